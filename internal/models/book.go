// Package models содержит доменные структуры каталога библиотеки:
// книги, авторов, жанры, экземпляры книг (записи о выдаче) и пользователей.
// Структуры используются в бизнес-логике, хранилище и HTTP-слое.
package models

// Book представляет книгу каталога. Физические экземпляры книги описываются LoanRecord.
type Book struct {
	ID       int      `json:"id" db:"id"`
	Title    string   `json:"title" db:"title"`
	Summary  string   `json:"summary" db:"summary"`
	ISBN     string   `json:"isbn" db:"isbn"`
	AuthorID *int     `json:"author_id,omitempty" db:"author_id"`
	Genres   []string `json:"genres,omitempty" db:"-"`
}

// DummyBook используется для приёма книги из JSON-запроса до валидации.
type DummyBook struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Summary  string   `json:"summary" validate:"max=1000"`
	ISBN     string   `json:"isbn" validate:"required,len=13,numeric"`
	AuthorID *int     `json:"author_id" validate:"omitempty,gt=0"`
	Genres   []string `json:"genres" validate:"dive,required,max=200"`
}

// BookDetail — книга вместе с автором, экземплярами и числом просмотров карточки.
type BookDetail struct {
	Book
	Author *Author      `json:"author,omitempty"`
	Copies []LoanRecord `json:"copies"`
	Views  int64        `json:"views"`
}
