package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// LoanStatus — статус физического экземпляра книги.
type LoanStatus string

// Возможные статусы экземпляра. В базе хранится однобуквенный код (см. Code).
const (
	StatusAvailable   LoanStatus = "available"
	StatusOnLoan      LoanStatus = "on-loan"
	StatusMaintenance LoanStatus = "maintenance"
	StatusReserved    LoanStatus = "reserved"
)

var statusCodes = map[LoanStatus]string{
	StatusAvailable:   "a",
	StatusOnLoan:      "o",
	StatusMaintenance: "m",
	StatusReserved:    "r",
}

// Code возвращает однобуквенный код статуса для хранения в БД.
func (s LoanStatus) Code() string {
	return statusCodes[s]
}

// Valid сообщает, является ли статус одним из известных.
func (s LoanStatus) Valid() bool {
	_, ok := statusCodes[s]
	return ok
}

// ParseStatusCode преобразует код из БД обратно в LoanStatus.
func ParseStatusCode(code string) (LoanStatus, error) {
	for status, c := range statusCodes {
		if c == code {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown loan status code %q", code)
}

// Scan реализует sql.Scanner, чтобы sqlx мог читать колонку status напрямую.
func (s *LoanStatus) Scan(src any) error {
	var code string
	switch v := src.(type) {
	case string:
		code = v
	case []byte:
		code = string(v)
	default:
		return fmt.Errorf("cannot scan %T into LoanStatus", src)
	}
	status, err := ParseStatusCode(code)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// UnmarshalJSON отклоняет неизвестные статусы ещё на этапе декодирования.
func (s *LoanStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status := LoanStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("unknown loan status %q", raw)
	}
	*s = status
	return nil
}

// LoanRecord — конкретный экземпляр книги. Запись со статусом on-loan
// обязана иметь заёмщика и дату возврата.
type LoanRecord struct {
	ID          string     `json:"id" db:"id"`
	BookID      int        `json:"book_id" db:"book_id"`
	BookTitle   string     `json:"book_title,omitempty" db:"book_title"`
	Imprint     string     `json:"imprint" db:"imprint"`
	DueBack     *time.Time `json:"due_back,omitempty" db:"due_back"`
	Status      LoanStatus `json:"status" db:"status"`
	BorrowerUID *string    `json:"borrower_uid,omitempty" db:"borrower_uid"`
}

// IsOverdue сообщает, просрочен ли экземпляр на дату today. Сравниваются календарные дни.
func (l LoanRecord) IsOverdue(today time.Time) bool {
	if l.Status != StatusOnLoan || l.DueBack == nil {
		return false
	}
	due := time.Date(l.DueBack.Year(), l.DueBack.Month(), l.DueBack.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(day)
}

// BorrowedLoan — выданный экземпляр с признаком просрочки.
type BorrowedLoan struct {
	LoanRecord
	Overdue bool `json:"is_overdue"`
}

// MarkOverdue дополняет записи признаком просрочки на дату today, порядок сохраняется.
func MarkOverdue(loans []LoanRecord, today time.Time) []BorrowedLoan {
	res := make([]BorrowedLoan, 0, len(loans))
	for _, l := range loans {
		res = append(res, BorrowedLoan{LoanRecord: l, Overdue: l.IsOverdue(today)})
	}
	return res
}

// DummyLoanRecord используется для создания нового экземпляра книги.
type DummyLoanRecord struct {
	BookID  int        `json:"book_id" validate:"required,gt=0"`
	Imprint string     `json:"imprint" validate:"required,max=200"`
	Status  LoanStatus `json:"status" validate:"omitempty"`
}

// DummyRenewal — запрос на продление выдачи.
type DummyRenewal struct {
	RenewalDate string `json:"renewal_date" validate:"required,datetime=2006-01-02"`
}

// DummyCheckout — запрос на выдачу экземпляра читателю.
type DummyCheckout struct {
	BorrowerUID string `json:"borrower_uid" validate:"required,uuid"`
	DueBack     string `json:"due_back" validate:"omitempty,datetime=2006-01-02"`
}

// CatalogStats — счётчики для главной страницы.
type CatalogStats struct {
	Books              int   `json:"num_books"`
	Instances          int   `json:"num_instances"`
	InstancesAvailable int   `json:"num_instances_available"`
	Authors            int   `json:"num_authors"`
	Visits             int64 `json:"num_visits"`
}

// Типы событий выдачи; используются как routing key в RabbitMQ.
const (
	EventLoanRenewed    = "loan.renewed"
	EventLoanCheckedOut = "loan.checked_out"
	EventLoanReturned   = "loan.returned"
	EventLoanOverdue    = "loan.overdue"
)

// LoanEvent публикуется после успешного изменения состояния экземпляра.
type LoanEvent struct {
	Type        string     `json:"type"`
	LoanID      string     `json:"loan_id"`
	BookID      int        `json:"book_id"`
	BookTitle   string     `json:"book_title"`
	BorrowerUID *string    `json:"borrower_uid,omitempty"`
	DueBack     *time.Time `json:"due_back,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// NewLoanEvent собирает событие типа eventType по состоянию экземпляра rec.
func NewLoanEvent(eventType string, rec LoanRecord, at time.Time) LoanEvent {
	return LoanEvent{
		Type:        eventType,
		LoanID:      rec.ID,
		BookID:      rec.BookID,
		BookTitle:   rec.BookTitle,
		BorrowerUID: rec.BorrowerUID,
		DueBack:     rec.DueBack,
		OccurredAt:  at,
	}
}
