// Package models содержит доменную модель пользователя системы и его профиля.
package models

import "time"

// Роли пользователей.
const (
	RoleMember    = "member"
	RoleLibrarian = "librarian"
)

// Права, которые проверяются на уровне маршрутов.
const (
	// PermMarkReturned разрешает видеть все выдачи, продлевать, выдавать и принимать книги.
	PermMarkReturned = "can_mark_returned"
	// PermEditCatalog разрешает изменять книги, авторов и экземпляры.
	PermEditCatalog = "can_edit_catalog"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string    `db:"uid"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Permissions  []string  `db:"-"`
	CreatedAt    time.Time `db:"created_at"`
}

// HasPermission сообщает, выдано ли пользователю право perm.
func (u User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Profile — редактируемый профиль пользователя, создаётся при регистрации.
type Profile struct {
	UserUID   string    `json:"user_uid" db:"user_uid"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Bio       string    `json:"bio" db:"bio"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DummyProfile используется для приёма изменений профиля из JSON-запроса.
type DummyProfile struct {
	Email     string `json:"email" validate:"omitempty,email"`
	Bio       string `json:"bio" validate:"max=500"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}
