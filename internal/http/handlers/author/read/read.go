// Package read реализует HTTP-обработчик карточки автора вместе с его книгами.
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

// Service описывает чтение автора.
type Service interface {
	ReadAuthor(ctx context.Context, id int) (*models.AuthorDetail, error)
}

// Handler обрабатывает GET /authors/{id}.
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
// @Summary Карточка автора
// @Tags Authors
// @Produce  json
// @Param id path int true "ID автора"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Автор не найден"
// @Router /authors/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.author.read"
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

	author, err := h.service.ReadAuthor(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("author not found"))
		return
	}
	if err != nil {
		log.Error("failed to read author", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read author"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"author": author,
	}))
}
