// Package create реализует HTTP-обработчик добавления книги в каталог.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// Service описывает создание книги.
type Service interface {
	CreateBook(ctx context.Context, req models.DummyBook) (int, error)
}

// Handler обрабатывает POST /books.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить книгу
// @Tags Books
// @Accept  json
// @Produce  json
// @Param request body models.DummyBook true "Данные книги"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет прав на изменение каталога"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестный автор"
// @Security BearerAuth
// @Router /books [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBook
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("invalid request", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.CreateBook(r.Context(), req)
	if errors.Is(err, storage.ErrInvalidReference) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("author_id", "unknown author"))
		return
	}
	if err != nil {
		log.Error("failed to create book", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create book"))
		return
	}

	log.Info("book created", slog.Int("id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"book_id": id,
	}))
}
