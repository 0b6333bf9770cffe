package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

var authorColumns = []any{"id", "first_name", "last_name", "date_of_birth", "date_of_death"}

func authorRecord(a models.Author) goqu.Record {
	return goqu.Record{
		"first_name":    a.FirstName,
		"last_name":     a.LastName,
		"date_of_birth": a.DateOfBirth,
		"date_of_death": a.DateOfDeath,
	}
}

// CreateAuthor вставляет автора и возвращает его ID.
func (s *Storage) CreateAuthor(ctx context.Context, author models.Author) (int, error) {
	const op = "storage.CreateAuthor"
	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}

	query, args, err := dialect.Insert("authors").
		Rows(authorRecord(author)).
		Returning("id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int
	if err = s.DB.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ReadAuthor возвращает автора по ID.
func (s *Storage) ReadAuthor(ctx context.Context, id int) (*models.Author, error) {
	const op = "storage.ReadAuthor"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query, args, err := dialect.From("authors").
		Select(authorColumns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var author models.Author
	if err = s.DB.GetContext(ctx, &author, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &author, nil
}

// UpdateAuthor обновляет данные автора.
func (s *Storage) UpdateAuthor(ctx context.Context, author models.Author, id int) (int, error) {
	const op = "storage.UpdateAuthor"
	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}

	query, args, err := dialect.Update("authors").
		Set(authorRecord(author)).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// RemoveAuthor удаляет автора; у его книг author_id становится NULL.
func (s *Storage) RemoveAuthor(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveAuthor"
	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// ListAuthors возвращает страницу авторов по фамилии и имени и общее количество.
func (s *Storage) ListAuthors(ctx context.Context, limit, offset int) ([]models.Author, int, error) {
	const op = "storage.ListAuthors"
	if err := checkContext(ctx, op); err != nil {
		return nil, 0, err
	}

	query, args, err := dialect.From("authors").
		Select(authorColumns...).
		Order(goqu.I("last_name").Asc(), goqu.I("first_name").Asc(), goqu.I("id").Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	authors := make([]models.Author, 0, limit)
	if err = s.DB.SelectContext(ctx, &authors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err = s.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM authors`); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return authors, total, nil
}

// SearchAuthors возвращает авторов, у которых query встречается в имени или фамилии.
func (s *Storage) SearchAuthors(ctx context.Context, query string) ([]models.Author, error) {
	const op = "storage.SearchAuthors"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	pattern := containsPattern(query)
	sqlQuery, args, err := dialect.From("authors").
		Select(authorColumns...).
		Where(goqu.Or(
			goqu.C("first_name").ILike(pattern),
			goqu.C("last_name").ILike(pattern),
		)).
		Order(goqu.I("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authors := make([]models.Author, 0)
	if err = s.DB.SelectContext(ctx, &authors, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return authors, nil
}
