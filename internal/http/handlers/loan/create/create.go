// Package create реализует HTTP-обработчик добавления экземпляра книги.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/library-catalog/internal/catalog"
	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// Service описывает создание экземпляра.
type Service interface {
	Create(ctx context.Context, req models.DummyLoanRecord) (string, error)
}

// Handler обрабатывает POST /loans.
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
// @Summary Добавить экземпляр книги
// @Description Экземпляр без статуса создаётся на обслуживании. Статус on-loan задаётся только выдачей.
// @Tags Loans
// @Accept  json
// @Produce  json
// @Param request body models.DummyLoanRecord true "Данные экземпляра"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или статус"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестная книга"
// @Security BearerAuth
// @Router /loans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLoanRecord
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

	id, err := h.service.Create(r.Context(), req)
	switch {
	case errors.Is(err, catalog.ErrOnLoanWithoutBorrower), errors.Is(err, catalog.ErrOnLoanWithoutDueBack):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("status", "use checkout to put a record on loan"))
		return
	case errors.Is(err, storage.ErrInvalidReference):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("book_id", "unknown book"))
		return
	case err != nil:
		log.Error("failed to create loan record", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create loan record"))
		return
	}

	log.Info("loan record created", slog.String("id", id))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"loan_id": id,
	}))
}
