// Package services содержит фоновую проверку просроченных выдач.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-catalog/internal/catalog"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// LoanRepository возвращает выданные экземпляры.
type LoanRepository interface {
	ListOnLoan(ctx context.Context, borrowerUID *string) ([]models.LoanRecord, error)
}

// EventPublisher отправляет события во внешнюю шину.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// OverdueService периодически ищет просроченные выдачи и публикует по ним события.
type OverdueService struct {
	repo      LoanRepository
	publisher EventPublisher
	log       *slog.Logger
}

// NewOverdueService создает новый экземпляр OverdueService.
func NewOverdueService(repo LoanRepository, publisher EventPublisher, log *slog.Logger) *OverdueService {
	return &OverdueService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Run проверяет выдачи сразу и затем каждые interval, пока не отменён ctx.
func (s *OverdueService) Run(ctx context.Context, interval time.Duration) {
	s.runCheck(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCheck(ctx)
		}
	}
}

func (s *OverdueService) runCheck(ctx context.Context) {
	s.log.Info("starting check for overdue loans")
	count, err := s.CheckOverdue(ctx, time.Now())
	if err != nil {
		s.log.Error("failed to check overdue loans", sl.Err(err))
		return
	}
	s.log.Info("overdue check finished", slog.Int("count", count))
}

// CheckOverdue публикует событие loan.overdue по каждой выдаче, срок которой истёк к today.
// Возвращает число найденных просроченных выдач.
func (s *OverdueService) CheckOverdue(ctx context.Context, today time.Time) (int, error) {
	const op = "services.CheckOverdue"

	loans, err := s.repo.ListOnLoan(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	count := 0
	for _, l := range catalog.ListAllBorrowed(loans) {
		if !l.IsOverdue(today) {
			// список упорядочен по сроку возврата
			break
		}
		count++
		event := models.NewLoanEvent(models.EventLoanOverdue, l, today.UTC())
		if err := s.publisher.Publish(ctx, models.EventLoanOverdue, event); err != nil {
			s.log.Error("failed to publish message", slog.String("loan_id", l.ID), sl.Err(err))
		}
	}
	return count, nil
}
