package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// userRow — строка users; права хранятся массивом TEXT[] и читаются через array_to_string.
type userRow struct {
	models.User
	PermissionsCSV string `db:"permissions"`
}

func (r userRow) toModel() *models.User {
	u := r.User
	if r.PermissionsCSV != "" {
		u.Permissions = strings.Split(r.PermissionsCSV, ",")
	}
	return &u
}

const selectUser = `SELECT uid, email, username, password_hash, role,
		array_to_string(permissions, ',') AS permissions, created_at
	FROM users`

// RegisterUser сохраняет нового пользователя вместе с пустым профилем и возвращает его uid.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	if err := checkContext(ctx, op); err != nil {
		return "", err
	}

	perms := user.Permissions
	if perms == nil {
		perms = []string{}
	}

	var newID string
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `INSERT INTO users (email, username, password_hash, role, permissions)
			VALUES ($1, $2, $3, $4, string_to_array(NULLIF($5, ''), ',')::text[])
			RETURNING uid`,
			user.Email, user.Username, user.PasswordHash, user.Role, strings.Join(perms, ","),
		).Scan(&newID)
		if err != nil {
			return mapError(err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO profiles (user_uid) VALUES ($1)`, newID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByUsername", selectUser+` WHERE username = $1`, username)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	var row userRow
	if err := s.DB.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row.toModel(), nil
}

const selectProfile = `SELECT p.user_uid, u.username, u.email, p.bio, p.avatar_url, p.updated_at
	FROM profiles p
	JOIN users u ON u.uid = p.user_uid`

// GetProfile возвращает профиль пользователя.
func (s *Storage) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	var p models.Profile
	if err := s.DB.GetContext(ctx, &p, selectProfile+` WHERE p.user_uid::text = $1`, userUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// UpdateProfile обновляет email пользователя и поля профиля в одной транзакции.
// Пустой email оставляет текущий.
func (s *Storage) UpdateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	const op = "storage.UpdateProfile"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	var updated models.Profile
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if p.Email != "" {
			res, err := tx.ExecContext(ctx, `UPDATE users SET email = $1 WHERE uid::text = $2`, p.Email, p.UserUID)
			if err != nil {
				return mapError(err)
			}
			if _, err = affected(res, op); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `UPDATE profiles
			SET bio = $1, avatar_url = $2, updated_at = NOW()
			WHERE user_uid::text = $3`, p.Bio, p.AvatarURL, p.UserUID)
		if err != nil {
			return err
		}
		if _, err = affected(res, op); err != nil {
			return err
		}
		return tx.GetContext(ctx, &updated, selectProfile+` WHERE p.user_uid::text = $1`, p.UserUID)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &updated, nil
}
