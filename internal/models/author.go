package models

import "time"

// Author представляет автора книг.
type Author struct {
	ID          int        `json:"id" db:"id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty" db:"date_of_death"`
}

// DummyAuthor используется для приёма автора из JSON-запроса.
// Даты приходят строками в формате 2006-01-02.
type DummyAuthor struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	DateOfDeath string `json:"date_of_death" validate:"omitempty,datetime=2006-01-02"`
}

// AuthorDetail — автор и его книги.
type AuthorDetail struct {
	Author
	Books []Book `json:"books"`
}
