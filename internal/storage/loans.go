package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

const selectLoan = `SELECT lr.id, lr.book_id, b.title AS book_title, lr.imprint,
		lr.due_back, lr.status, lr.borrower_uid
	FROM loan_records lr
	JOIN books b ON b.id = lr.book_id`

func loanDataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("loan_records").As("lr")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("lr.book_id")))).
		Select(
			goqu.I("lr.id"),
			goqu.I("lr.book_id"),
			goqu.I("b.title").As("book_title"),
			goqu.I("lr.imprint"),
			goqu.I("lr.due_back"),
			goqu.I("lr.status"),
			goqu.I("lr.borrower_uid"),
		)
}

// CreateLoanRecord добавляет экземпляр книги и возвращает его ID.
func (s *Storage) CreateLoanRecord(ctx context.Context, rec models.LoanRecord) (string, error) {
	const op = "storage.CreateLoanRecord"
	if err := checkContext(ctx, op); err != nil {
		return "", err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	query, args, err := dialect.Insert("loan_records").
		Rows(goqu.Record{
			"id":           rec.ID,
			"book_id":      rec.BookID,
			"imprint":      rec.Imprint,
			"due_back":     rec.DueBack,
			"status":       rec.Status.Code(),
			"borrower_uid": rec.BorrowerUID,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return rec.ID, nil
}

// ReadLoanRecord возвращает экземпляр по ID.
func (s *Storage) ReadLoanRecord(ctx context.Context, id string) (*models.LoanRecord, error) {
	const op = "storage.ReadLoanRecord"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var rec models.LoanRecord
	if err := s.DB.GetContext(ctx, &rec, selectLoan+` WHERE lr.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// RemoveLoanRecord удаляет экземпляр.
func (s *Storage) RemoveLoanRecord(ctx context.Context, id string) (int, error) {
	const op = "storage.RemoveLoanRecord"
	if err := checkContext(ctx, op); err != nil {
		return 0, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM loan_records WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected(res, op)
}

// ListOnLoan возвращает выданные экземпляры. Если borrowerUID не nil,
// выборка ограничивается одним заёмщиком. Сортировка по сроку — забота вызывающего.
func (s *Storage) ListOnLoan(ctx context.Context, borrowerUID *string) ([]models.LoanRecord, error) {
	const op = "storage.ListOnLoan"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	ds := loanDataset().
		Where(goqu.I("lr.status").Eq(models.StatusOnLoan.Code())).
		Order(goqu.I("lr.due_back").Asc(), goqu.I("lr.id").Asc())
	if borrowerUID != nil {
		ds = ds.Where(goqu.I("lr.borrower_uid").Eq(*borrowerUID))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loans := make([]models.LoanRecord, 0)
	if err = s.DB.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}

// ListLoanRecordsByBook возвращает все экземпляры книги.
func (s *Storage) ListLoanRecordsByBook(ctx context.Context, bookID int) ([]models.LoanRecord, error) {
	const op = "storage.ListLoanRecordsByBook"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}

	query, args, err := loanDataset().
		Where(goqu.I("lr.book_id").Eq(bookID)).
		Order(goqu.I("lr.imprint").Asc(), goqu.I("lr.id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loans := make([]models.LoanRecord, 0)
	if err = s.DB.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}

// MutateLoanRecord перечитывает экземпляр под блокировкой строки (SELECT ... FOR UPDATE),
// передаёт его в mutate и сохраняет изменённые due_back, status и borrower_uid
// в той же транзакции. Если mutate вернул ошибку, транзакция откатывается.
func (s *Storage) MutateLoanRecord(ctx context.Context, id string, mutate func(rec *models.LoanRecord) error) (*models.LoanRecord, error) {
	const op = "storage.MutateLoanRecord"
	if err := checkContext(ctx, op); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var rec models.LoanRecord
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &rec, selectLoan+` WHERE lr.id = $1 FOR UPDATE OF lr`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err = mutate(&rec); err != nil {
			return err
		}

		query, args, err := dialect.Update("loan_records").
			Set(goqu.Record{
				"due_back":     rec.DueBack,
				"status":       rec.Status.Code(),
				"borrower_uid": rec.BorrowerUID,
			}).
			Where(goqu.C("id").Eq(id)).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}
