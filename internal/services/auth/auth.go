// Package services содержит логику бизнес-уровня для работы с пользователями,
// их профилями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/library-catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/library-catalog/internal/lib/password"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// ErrInvalidCredentials — неверное имя пользователя или пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя вместе с профилем и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
}

// AuthService отвечает за регистрацию, авторизацию, валидацию JWT и профили.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового читателя с хэшированием пароля и ролью member.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	return s.register(ctx, models.User{
		Email:    email,
		Username: username,
		Role:     models.RoleMember,
	}, rawPassword)
}

func (s *AuthService) register(ctx context.Context, user models.User, rawPassword string) (string, error) {
	const op = "services.Register"

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = hashed

	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// EnsureLibrarian создаёт библиотекаря со всеми правами, если пользователя
// с именем username ещё нет. Пустое имя отключает создание.
func (s *AuthService) EnsureLibrarian(ctx context.Context, email, username, rawPassword string) error {
	const op = "services.EnsureLibrarian"
	if username == "" {
		return nil
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.register(ctx, models.User{
		Email:       email,
		Username:    username,
		Role:        models.RoleLibrarian,
		Permissions: []string{models.PermMarkReturned, models.PermEditCatalog},
	}, rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("librarian account created", slog.String("username", username), slog.String("uid", uid))
	return nil
}

// Login проверяет пароль пользователя и выдаёт JWT с его ролью и правами.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	const op = "services.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Verify(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err = s.jwtMaker.GenerateToken(jwt.Subject{
		UserUID:     user.UUID,
		Username:    user.Username,
		Role:        user.Role,
		Permissions: user.Permissions,
	})
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает его claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("services.ValidateToken: %w", err)
	}
	return claims, nil
}

// Profile возвращает профиль пользователя.
func (s *AuthService) Profile(ctx context.Context, userUID string) (*models.Profile, error) {
	p, err := s.users.GetProfile(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("services.Profile: %w", err)
	}
	return p, nil
}

// EditProfile сохраняет изменения профиля владельца userUID.
func (s *AuthService) EditProfile(ctx context.Context, userUID string, req models.DummyProfile) (*models.Profile, error) {
	const op = "services.EditProfile"

	p, err := s.users.UpdateProfile(ctx, models.Profile{
		UserUID:   userUID,
		Email:     req.Email,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("profile updated", slog.String("user_uid", userUID))
	return p, nil
}
