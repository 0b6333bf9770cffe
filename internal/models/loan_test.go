package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanStatus_Codes(t *testing.T) {
	for _, status := range []LoanStatus{StatusAvailable, StatusOnLoan, StatusMaintenance, StatusReserved} {
		assert.True(t, status.Valid())
		parsed, err := ParseStatusCode(status.Code())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	assert.False(t, LoanStatus("lost").Valid())
	_, err := ParseStatusCode("x")
	assert.Error(t, err)
}

func TestLoanStatus_Scan(t *testing.T) {
	var s LoanStatus
	require.NoError(t, s.Scan([]byte("o")))
	assert.Equal(t, StatusOnLoan, s)
	require.NoError(t, s.Scan("r"))
	assert.Equal(t, StatusReserved, s)

	assert.Error(t, s.Scan(42))
	assert.Error(t, s.Scan("z"))
}

func TestLoanStatus_UnmarshalJSON(t *testing.T) {
	var req DummyLoanRecord
	require.NoError(t, json.Unmarshal([]byte(`{"book_id":1,"imprint":"Ace","status":"reserved"}`), &req))
	assert.Equal(t, StatusReserved, req.Status)

	err := json.Unmarshal([]byte(`{"book_id":1,"imprint":"Ace","status":"o"}`), &req)
	assert.Error(t, err)
}

func TestMarkOverdue(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, 0, -1)
	future := today.AddDate(0, 0, 5)
	uid := "reader"

	loans := []LoanRecord{
		{ID: "a", Status: StatusOnLoan, DueBack: &past, BorrowerUID: &uid},
		{ID: "b", Status: StatusOnLoan, DueBack: &today, BorrowerUID: &uid},
		{ID: "c", Status: StatusOnLoan, DueBack: &future, BorrowerUID: &uid},
	}

	got := MarkOverdue(loans, today)

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.True(t, got[0].Overdue)
	assert.False(t, got[1].Overdue)
	assert.False(t, got[2].Overdue)
	assert.Empty(t, MarkOverdue(nil, today))
}

func TestLoanRecord_IsOverdue(t *testing.T) {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rec := LoanRecord{Status: StatusOnLoan, DueBack: &due}

	assert.False(t, rec.IsOverdue(time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)))
	assert.True(t, rec.IsOverdue(time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)))

	rec.Status = StatusAvailable
	assert.False(t, rec.IsOverdue(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNewLoanEvent(t *testing.T) {
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	uid := "reader"

	ev := NewLoanEvent(EventLoanRenewed, LoanRecord{
		ID: "loan-1", BookID: 3, BookTitle: "Dune", DueBack: &due, BorrowerUID: &uid, Status: StatusOnLoan,
	}, at)

	assert.Equal(t, LoanEvent{
		Type:        "loan.renewed",
		LoanID:      "loan-1",
		BookID:      3,
		BookTitle:   "Dune",
		BorrowerUID: &uid,
		DueBack:     &due,
		OccurredAt:  at,
	}, ev)
}

func TestUser_HasPermission(t *testing.T) {
	u := User{Permissions: []string{PermMarkReturned}}
	assert.True(t, u.HasPermission(PermMarkReturned))
	assert.False(t, u.HasPermission(PermEditCatalog))
}
