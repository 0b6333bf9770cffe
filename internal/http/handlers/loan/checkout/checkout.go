// Package checkout реализует HTTP-обработчик выдачи экземпляра читателю.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/library-catalog/internal/catalog"
	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	services "github.com/magabrotheeeer/library-catalog/internal/services/loan"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// Service описывает выдачу экземпляра.
type Service interface {
	Checkout(ctx context.Context, id, borrowerUID string, dueBack *time.Time, today time.Time) (*models.LoanRecord, error)
}

// Handler обрабатывает POST /loans/{id}/checkout.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	now      func() time.Time
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, now func() time.Time) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		now:      now,
	}
}

// ServeHTTP godoc
// @Summary Выдать экземпляр читателю
// @Description Без due_back срок возврата через три недели.
// @Tags Loans
// @Accept  json
// @Produce  json
// @Param id path string true "ID экземпляра"
// @Param request body models.DummyCheckout true "Читатель и срок возврата"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Экземпляр не найден"
// @Failure 409 {object} response.ErrorResponse "Экземпляр недоступен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /loans/{id}/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCheckout
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

	var dueBack *time.Time
	if req.DueBack != "" {
		t, err := time.Parse(time.DateOnly, req.DueBack)
		if err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.FieldError("due_back", "invalid date"))
			return
		}
		dueBack = &t
	}

	id := chi.URLParam(r, "id")
	rec, err := h.service.Checkout(r.Context(), id, req.BorrowerUID, dueBack, h.now())
	switch {
	case errors.Is(err, catalog.ErrInvalidRenewalDate):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("due_back", catalog.RenewalMessage(err)))
		return
	case errors.Is(err, storage.ErrInvalidReference):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("borrower_uid", "unknown user"))
		return
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("loan record not found"))
		return
	case errors.Is(err, services.ErrNotAvailable):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("loan record is not available"))
		return
	case err != nil:
		log.Error("failed to checkout", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not checkout book"))
		return
	}

	log.Info("book checked out", slog.String("loan_id", id), slog.String("borrower_uid", req.BorrowerUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"loan": rec,
	}))
}
