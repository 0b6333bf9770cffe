package create

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateBook(ctx context.Context, req models.DummyBook) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	author := 2

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание",
			body: `{"title":"Dune","isbn":"9780441172719","author_id":2,"genres":["Science Fiction"]}`,
			setupMock: func(m *MockService) {
				m.On("CreateBook", mock.Anything, models.DummyBook{
					Title:    "Dune",
					ISBN:     "9780441172719",
					AuthorID: &author,
					Genres:   []string{"Science Fiction"},
				}).Return(5, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"book_id":5`,
		},
		{
			name:           "некорректный JSON",
			body:           "not a json",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "failed to decode request",
		},
		{
			name:           "ошибка валидации isbn",
			body:           `{"title":"Dune","isbn":"123"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field ISBN must be exactly 13 characters long",
		},
		{
			name:           "нет названия",
			body:           `{"isbn":"9780441172719"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Title is a required field",
		},
		{
			name: "неизвестный автор",
			body: `{"title":"Dune","isbn":"9780441172719","author_id":404}`,
			setupMock: func(m *MockService) {
				m.On("CreateBook", mock.Anything, mock.Anything).Return(0, storage.ErrInvalidReference).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field author_id: unknown author",
		},
		{
			name: "ошибка сервиса",
			body: `{"title":"Dune","isbn":"9780441172719"}`,
			setupMock: func(m *MockService) {
				m.On("CreateBook", mock.Anything, mock.Anything).Return(0, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "failed to create book",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id"))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
