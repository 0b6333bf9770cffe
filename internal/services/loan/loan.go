// Package services содержит бизнес-логику выдачи книг: списки выданных
// экземпляров, продление, выдачу и приём книг, учёт экземпляров.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-catalog/internal/catalog"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

var (
	// ErrNotOnLoan — операция требует, чтобы экземпляр был выдан.
	ErrNotOnLoan = errors.New("loan record is not on loan")
	// ErrNotAvailable — экземпляр нельзя выдать в текущем статусе.
	ErrNotAvailable = errors.New("loan record is not available for checkout")
)

// LoanRepository определяет методы хранилища экземпляров.
type LoanRepository interface {
	CreateLoanRecord(ctx context.Context, rec models.LoanRecord) (string, error)
	ReadLoanRecord(ctx context.Context, id string) (*models.LoanRecord, error)
	RemoveLoanRecord(ctx context.Context, id string) (int, error)
	// ListOnLoan возвращает выданные экземпляры; borrowerUID ограничивает выборку одним читателем.
	ListOnLoan(ctx context.Context, borrowerUID *string) ([]models.LoanRecord, error)
	// MutateLoanRecord изменяет экземпляр под блокировкой строки в одной транзакции.
	MutateLoanRecord(ctx context.Context, id string, mutate func(rec *models.LoanRecord) error) (*models.LoanRecord, error)
}

// EventPublisher отправляет события выдачи во внешнюю шину.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// LoanService реализует операции выдачи.
type LoanService struct {
	repo      LoanRepository
	publisher EventPublisher
	log       *slog.Logger
	now       func() time.Time
}

// NewLoanService создает новый экземпляр LoanService.
func NewLoanService(repo LoanRepository, publisher EventPublisher, log *slog.Logger) *LoanService {
	return &LoanService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// ListMyBorrowed возвращает книги, выданные пользователю userID, по возрастанию срока возврата.
func (s *LoanService) ListMyBorrowed(ctx context.Context, userID string) ([]models.LoanRecord, error) {
	const op = "services.ListMyBorrowed"

	loans, err := s.repo.ListOnLoan(ctx, &userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return catalog.ListMyBorrowed(loans, userID), nil
}

// ListAllBorrowed возвращает все выданные книги по возрастанию срока возврата.
func (s *LoanService) ListAllBorrowed(ctx context.Context) ([]models.LoanRecord, error) {
	const op = "services.ListAllBorrowed"

	loans, err := s.repo.ListOnLoan(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return catalog.ListAllBorrowed(loans), nil
}

// RenewalForm возвращает экземпляр и дату, которой предзаполняется продление.
func (s *LoanService) RenewalForm(ctx context.Context, id string, today time.Time) (*models.LoanRecord, time.Time, error) {
	const op = "services.RenewalForm"

	rec, err := s.repo.ReadLoanRecord(ctx, id)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return rec, catalog.DefaultRenewalDate(today), nil
}

// Renew продлевает выдачу до proposed. Дата проверяется до обращения к хранилищу,
// статус экземпляра перечитывается под блокировкой.
func (s *LoanService) Renew(ctx context.Context, id string, proposed, today time.Time) (*models.LoanRecord, error) {
	const op = "services.Renew"

	dueBack, err := catalog.ValidateRenewal(proposed, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := s.repo.MutateLoanRecord(ctx, id, func(rec *models.LoanRecord) error {
		if rec.Status != models.StatusOnLoan {
			return ErrNotOnLoan
		}
		rec.DueBack = &dueBack
		return catalog.CheckLoanInvariant(*rec)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("loan renewed", slog.String("loan_id", id), slog.String("due_back", dueBack.Format(time.DateOnly)))
	s.publish(ctx, models.EventLoanRenewed, *rec)
	return rec, nil
}

// Checkout выдаёт доступный или зарезервированный экземпляр читателю borrowerUID.
// Если dueBack не задан, срок возврата — через три недели.
func (s *LoanService) Checkout(ctx context.Context, id, borrowerUID string, dueBack *time.Time, today time.Time) (*models.LoanRecord, error) {
	const op = "services.Checkout"

	due := catalog.DefaultRenewalDate(today)
	if dueBack != nil {
		var err error
		if due, err = catalog.ValidateRenewal(*dueBack, today); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	rec, err := s.repo.MutateLoanRecord(ctx, id, func(rec *models.LoanRecord) error {
		if rec.Status != models.StatusAvailable && rec.Status != models.StatusReserved {
			return fmt.Errorf("%w: status %s", ErrNotAvailable, rec.Status)
		}
		rec.Status = models.StatusOnLoan
		rec.BorrowerUID = &borrowerUID
		rec.DueBack = &due
		return catalog.CheckLoanInvariant(*rec)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("book checked out", slog.String("loan_id", id), slog.String("borrower_uid", borrowerUID))
	s.publish(ctx, models.EventLoanCheckedOut, *rec)
	return rec, nil
}

// Return принимает выданный экземпляр: статус становится available,
// читатель и срок возврата очищаются.
func (s *LoanService) Return(ctx context.Context, id string) (*models.LoanRecord, error) {
	const op = "services.Return"

	var borrower *string
	rec, err := s.repo.MutateLoanRecord(ctx, id, func(rec *models.LoanRecord) error {
		if rec.Status != models.StatusOnLoan {
			return ErrNotOnLoan
		}
		borrower = rec.BorrowerUID
		rec.Status = models.StatusAvailable
		rec.BorrowerUID = nil
		rec.DueBack = nil
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("book returned", slog.String("loan_id", id))
	event := *rec
	event.BorrowerUID = borrower
	s.publish(ctx, models.EventLoanReturned, event)
	return rec, nil
}

// Create добавляет экземпляр книги. Без статуса экземпляр создаётся на обслуживании.
func (s *LoanService) Create(ctx context.Context, req models.DummyLoanRecord) (string, error) {
	const op = "services.CreateLoanRecord"

	rec := models.LoanRecord{
		BookID:  req.BookID,
		Imprint: req.Imprint,
		Status:  req.Status,
	}
	if rec.Status == "" {
		rec.Status = models.StatusMaintenance
	}
	if err := catalog.CheckLoanInvariant(rec); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateLoanRecord(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new loan record", slog.String("id", id), slog.Int("book_id", rec.BookID))
	return id, nil
}

// Read возвращает экземпляр по ID.
func (s *LoanService) Read(ctx context.Context, id string) (*models.LoanRecord, error) {
	rec, err := s.repo.ReadLoanRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("services.ReadLoanRecord: %w", err)
	}
	return rec, nil
}

// Remove удаляет экземпляр по ID.
func (s *LoanService) Remove(ctx context.Context, id string) (int, error) {
	count, err := s.repo.RemoveLoanRecord(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("services.RemoveLoanRecord: %w", err)
	}
	return count, nil
}

// publish отправляет событие; сбой шины не отменяет уже сохранённое изменение.
func (s *LoanService) publish(ctx context.Context, eventType string, rec models.LoanRecord) {
	event := models.NewLoanEvent(eventType, rec, s.now().UTC())
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.log.Warn("failed to publish loan event", slog.String("type", eventType), slog.String("loan_id", rec.ID), sl.Err(err))
	}
}
