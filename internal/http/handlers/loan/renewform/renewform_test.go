package renewform

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RenewalForm(ctx context.Context, id string, today time.Time) (*models.LoanRecord, time.Time, error) {
	args := m.Called(ctx, id, today)
	if res := args.Get(0); res != nil {
		return res.(*models.LoanRecord), args.Get(1).(time.Time), args.Error(2)
	}
	return nil, args.Get(1).(time.Time), args.Error(2)
}

func newRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/loans/"+id+"/renew", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRenewFormHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	today := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	now := func() time.Time { return today }

	t.Run("предложенная дата через три недели", func(t *testing.T) {
		svc := new(MockService)
		svc.On("RenewalForm", mock.Anything, "l1", today).
			Return(&models.LoanRecord{ID: "l1", Status: models.StatusOnLoan}, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), nil).Once()

		w := httptest.NewRecorder()
		New(logger, svc, now).ServeHTTP(w, newRequest("l1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"proposed_renewal_date":"2024-03-31"`)
		svc.AssertExpectations(t)
	})

	t.Run("экземпляр не найден", func(t *testing.T) {
		svc := new(MockService)
		svc.On("RenewalForm", mock.Anything, "ghost", today).Return(nil, time.Time{}, storage.ErrNotFound).Once()

		w := httptest.NewRecorder()
		New(logger, svc, now).ServeHTTP(w, newRequest("ghost"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
