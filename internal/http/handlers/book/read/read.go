// Package read реализует HTTP-обработчик карточки книги.
//
// Карточка содержит автора и число просмотров; каждый запрос увеличивает счётчик.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// Service описывает чтение книги.
type Service interface {
	ReadBook(ctx context.Context, id int) (*models.BookDetail, error)
}

// Handler обрабатывает GET /books/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Карточка книги
// @Tags Books
// @Produce  json
// @Param id path int true "ID книги"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Security BearerAuth
// @Router /books/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	book, err := h.service.ReadBook(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("book not found"))
		return
	}
	if err != nil {
		log.Error("failed to read book", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read book"))
		return
	}

	log.Info("success to read book", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"book": book,
	}))
}
