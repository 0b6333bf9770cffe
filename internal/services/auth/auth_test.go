package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/library-catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/library-catalog/internal/lib/password"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	services "github.com/magabrotheeeer/library-catalog/internal/services/auth"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *UserRepoMock) UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(user customjwt.Subject) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func newService() (*services.AuthService, *UserRepoMock, *JwtMakerMock) {
	repo := new(UserRepoMock)
	jwtMock := new(JwtMakerMock)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewAuthService(repo, jwtMock, log), repo, jwtMock
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(r *UserRepoMock)
		wantUserUID string
		wantErr     error
	}{
		{
			name: "successful registration",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.Username == "testuser" &&
						user.PasswordHash != "" &&
						user.PasswordHash != "password123" &&
						user.Role == models.RoleMember &&
						len(user.Permissions) == 0
				})).Return("some-uuid-string", nil).Once()
			},
			wantUserUID: "some-uuid-string",
		},
		{
			name: "duplicate user",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", storage.ErrUserExists).Once()
			},
			wantErr: storage.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService()
			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), "test@example.com", "testuser", "password123")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUserUID, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.Hash(rawPassword)
	require.NoError(t, err)

	testUser := &models.User{
		UUID:         "uid-1",
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: hashedPassword,
		Role:         models.RoleLibrarian,
		Permissions:  []string{models.PermMarkReturned},
	}
	subject := customjwt.Subject{
		UserUID:     "uid-1",
		Username:    "testuser",
		Role:        models.RoleLibrarian,
		Permissions: []string{models.PermMarkReturned},
	}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantRole   string
		wantErr    error
		errMsg     string
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(testUser, nil).Once()
				j.On("GenerateToken", subject).Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
			wantRole:  models.RoleLibrarian,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "password",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "nonexistent").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(testUser, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "token generation error",
			username: "testuser",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(testUser, nil).Once()
				j.On("GenerateToken", subject).Return("", errors.New("token error")).Once()
			},
			errMsg: "token error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, jwtMock := newService()
			tt.setupMocks(repo, jwtMock)

			token, role, err := svc.Login(context.Background(), tt.username, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, tt.wantRole, role)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	validClaims := &customjwt.CustomClaims{
		Username: "testuser",
		Role:     models.RoleMember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	svc, _, jwtMock := newService()
	jwtMock.On("ParseToken", "valid-token").Return(validClaims, nil).Once()
	jwtMock.On("ParseToken", "expired-token").Return(nil, errors.New("token expired")).Once()

	claims, err := svc.ValidateToken(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserUID())

	_, err = svc.ValidateToken(context.Background(), "expired-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestAuthService_EnsureLibrarian(t *testing.T) {
	t.Run("creates missing librarian", func(t *testing.T) {
		svc, repo, _ := newService()
		repo.On("GetUserByUsername", mock.Anything, "head").Return(nil, storage.ErrNotFound).Once()
		repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Role == models.RoleLibrarian &&
				u.HasPermission(models.PermMarkReturned) &&
				u.HasPermission(models.PermEditCatalog)
		})).Return("uid-lib", nil).Once()

		require.NoError(t, svc.EnsureLibrarian(context.Background(), "head@example.com", "head", "secret"))
		repo.AssertExpectations(t)
	})

	t.Run("existing user is kept", func(t *testing.T) {
		svc, repo, _ := newService()
		repo.On("GetUserByUsername", mock.Anything, "head").Return(&models.User{Username: "head"}, nil).Once()

		require.NoError(t, svc.EnsureLibrarian(context.Background(), "head@example.com", "head", "secret"))
		repo.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
	})

	t.Run("disabled", func(t *testing.T) {
		svc, repo, _ := newService()
		require.NoError(t, svc.EnsureLibrarian(context.Background(), "", "", ""))
		repo.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
	})

	t.Run("storage error", func(t *testing.T) {
		svc, repo, _ := newService()
		repo.On("GetUserByUsername", mock.Anything, "head").Return(nil, errors.New("db down")).Once()
		assert.Error(t, svc.EnsureLibrarian(context.Background(), "head@example.com", "head", "secret"))
	})
}

func TestAuthService_Profile(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("GetProfile", mock.Anything, "uid-1").Return(&models.Profile{UserUID: "uid-1", Username: "testuser"}, nil).Once()
	repo.On("UpdateProfile", mock.Anything, models.Profile{UserUID: "uid-1", Email: "new@example.com", Bio: "hi"}).
		Return(&models.Profile{UserUID: "uid-1", Email: "new@example.com", Bio: "hi"}, nil).Once()
	repo.On("GetProfile", mock.Anything, "ghost").Return(nil, storage.ErrNotFound).Once()

	p, err := svc.Profile(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "testuser", p.Username)

	p, err = svc.EditProfile(context.Background(), "uid-1", models.DummyProfile{Email: "new@example.com", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", p.Bio)

	_, err = svc.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	repo.AssertExpectations(t)
}
