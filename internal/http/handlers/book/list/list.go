// Package list реализует HTTP-обработчик постраничного списка книг.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/page"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// Service описывает получение страницы книг.
type Service interface {
	ListBooks(ctx context.Context, p page.Request) (page.Page[models.Book], error)
}

// Handler обрабатывает GET /books.
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
// @Summary Список книг
// @Tags Books
// @Produce  json
// @Param page query int false "Номер страницы, с 1"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Security BearerAuth
// @Router /books [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.ListBooks(r.Context(), page.FromRequest(r))
	if err != nil {
		log.Error("failed to list books", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list books"))
		return
	}

	log.Info("list books", slog.Int("page", res.Number), slog.Int("count", len(res.Entries)))
	render.JSON(w, r, response.OKWithData(res))
}
