package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

var bookColumns = []any{"id", "title", "summary", "isbn", "author_id"}

// CreateBook вставляет книгу вместе с жанрами и возвращает её ID.
func (s *Storage) CreateBook(ctx context.Context, book models.Book) (int, error) {
	const op = "storage.CreateBook"
	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}

	query, args, err := dialect.Insert("books").
		Rows(goqu.Record{
			"title":     book.Title,
			"summary":   book.Summary,
			"isbn":      book.ISBN,
			"author_id": book.AuthorID,
		}).
		Returning("id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return mapError(err)
		}
		return setGenres(ctx, tx, id, book.Genres)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ReadBook возвращает книгу по ID вместе с жанрами.
func (s *Storage) ReadBook(ctx context.Context, id int) (*models.Book, error) {
	const op = "storage.ReadBook"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query, args, err := dialect.From("books").
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var book models.Book
	if err = s.DB.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.DB.SelectContext(ctx, &book.Genres, `SELECT g.name
		FROM genres g
		JOIN book_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = $1
		ORDER BY g.name`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &book, nil
}

// UpdateBook обновляет книгу и заменяет её жанры.
func (s *Storage) UpdateBook(ctx context.Context, book models.Book, id int) (int, error) {
	const op = "storage.UpdateBook"
	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}

	query, args, err := dialect.Update("books").
		Set(goqu.Record{
			"title":     book.Title,
			"summary":   book.Summary,
			"isbn":      book.ISBN,
			"author_id": book.AuthorID,
		}).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var count int
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapError(err)
		}
		if count, err = affected(res, op); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = $1`, id); err != nil {
			return err
		}
		return setGenres(ctx, tx, id, book.Genres)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// RemoveBook удаляет книгу; её экземпляры удаляются каскадно.
func (s *Storage) RemoveBook(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveBook"
	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// ListBooks возвращает страницу книг, упорядоченных по названию, и общее количество.
func (s *Storage) ListBooks(ctx context.Context, limit, offset int) ([]models.Book, int, error) {
	const op = "storage.ListBooks"
	if err := checkContext(ctx, op); err != nil {
		return nil, 0, err
	}

	query, args, err := dialect.From("books").
		Select(bookColumns...).
		Order(goqu.I("title").Asc(), goqu.I("id").Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	books := make([]models.Book, 0, limit)
	if err = s.DB.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err = s.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM books`); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return books, total, nil
}

// ListBooksByAuthor возвращает все книги автора.
func (s *Storage) ListBooksByAuthor(ctx context.Context, authorID int) ([]models.Book, error) {
	const op = "storage.ListBooksByAuthor"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query, args, err := dialect.From("books").
		Select(bookColumns...).
		Where(goqu.C("author_id").Eq(authorID)).
		Order(goqu.I("title").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	books := make([]models.Book, 0)
	if err = s.DB.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return books, nil
}

// SearchBooks возвращает книги, в названии которых встречается query (ILIKE).
func (s *Storage) SearchBooks(ctx context.Context, query string) ([]models.Book, error) {
	const op = "storage.SearchBooks"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	sqlQuery, args, err := dialect.From("books").
		Select(bookColumns...).
		Where(goqu.C("title").ILike(containsPattern(query))).
		Order(goqu.I("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	books := make([]models.Book, 0)
	if err = s.DB.SelectContext(ctx, &books, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return books, nil
}

func setGenres(ctx context.Context, tx *sqlx.Tx, bookID int, genres []string) error {
	if len(genres) == 0 {
		return nil
	}

	rows := make([]any, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, goqu.Record{"name": g})
	}
	query, args, err := dialect.Insert("genres").
		Rows(rows...).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	query, args, err = sqlx.In(`INSERT INTO book_genres (book_id, genre_id)
		SELECT ?::int, id FROM genres WHERE name IN (?)
		ON CONFLICT DO NOTHING`, bookID, genres)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
