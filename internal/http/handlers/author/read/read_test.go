package read

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ReadAuthor(ctx context.Context, id int) (*models.AuthorDetail, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.AuthorDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "автор с книгами",
			id:   "1",
			setupMock: func(m *MockService) {
				m.On("ReadAuthor", mock.Anything, 1).Return(&models.AuthorDetail{
					Author: models.Author{ID: 1, FirstName: "Frank", LastName: "Herbert"},
					Books:  []models.Book{{ID: 3, Title: "Dune"}},
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"books":[{"id":3,"title":"Dune"`,
		},
		{
			name:           "некорректный id",
			id:             "one",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid id",
		},
		{
			name: "автор не найден",
			id:   "9",
			setupMock: func(m *MockService) {
				m.On("ReadAuthor", mock.Anything, 9).Return(nil, storage.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "author not found",
		},
		{
			name: "ошибка сервиса",
			id:   "1",
			setupMock: func(m *MockService) {
				m.On("ReadAuthor", mock.Anything, 1).Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "could not read author",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/authors/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
