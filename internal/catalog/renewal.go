// Package catalog содержит доменные правила библиотеки, не зависящие от
// хранилища и HTTP: проверку даты продления, выборку выданных книг и поиск
// по каталогу. Все функции чистые: «сегодня» всегда передаётся вызывающим.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/library-catalog/internal/models"
)

const (
	// MaxRenewalDays ограничивает продление сверху.
	MaxRenewalDays = 28
	// DefaultRenewalDays — срок, которым предзаполняется форма продления.
	DefaultRenewalDays = 21
)

var (
	// ErrInvalidRenewalDate оборачивает все отказы в продлении.
	ErrInvalidRenewalDate = errors.New("invalid renewal date")
	ErrDateInPast         = fmt.Errorf("%w: invalid date - renewal in past", ErrInvalidRenewalDate)
	ErrDateTooFarAhead    = fmt.Errorf("%w: invalid date - renewal more than 4 weeks ahead", ErrInvalidRenewalDate)

	ErrOnLoanWithoutBorrower = errors.New("on-loan record must have a borrower")
	ErrOnLoanWithoutDueBack  = errors.New("on-loan record must have a due-back date")
)

// ValidateRenewal проверяет, что proposed лежит в интервале [today, today+28 дней].
// Сравнение идёт по календарным датам, обе границы включены.
// При успехе возвращает proposed без изменений.
func ValidateRenewal(proposed, today time.Time) (time.Time, error) {
	day := dateOf(proposed)
	start := dateOf(today)

	if day.Before(start) {
		return time.Time{}, ErrDateInPast
	}
	if day.After(start.AddDate(0, 0, MaxRenewalDays)) {
		return time.Time{}, ErrDateTooFarAhead
	}
	return proposed, nil
}

// DefaultRenewalDate возвращает дату, которой предзаполняется запрос на продление.
func DefaultRenewalDate(today time.Time) time.Time {
	return dateOf(today).AddDate(0, 0, DefaultRenewalDays)
}

// CheckLoanInvariant проверяет, что выданный экземпляр имеет заёмщика и дату возврата.
func CheckLoanInvariant(rec models.LoanRecord) error {
	if rec.Status != models.StatusOnLoan {
		return nil
	}
	if rec.BorrowerUID == nil || *rec.BorrowerUID == "" {
		return ErrOnLoanWithoutBorrower
	}
	if rec.DueBack == nil {
		return ErrOnLoanWithoutDueBack
	}
	return nil
}

// RenewalMessage возвращает текст отказа в продлении для ответа клиенту.
// Для ошибок, не связанных с датой продления, возвращает пустую строку.
func RenewalMessage(err error) string {
	switch {
	case errors.Is(err, ErrDateInPast):
		return "invalid date - renewal in past"
	case errors.Is(err, ErrDateTooFarAhead):
		return "invalid date - renewal more than 4 weeks ahead"
	default:
		return ""
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
