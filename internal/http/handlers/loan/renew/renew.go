// Package renew реализует HTTP-обработчик продления выдачи библиотекарем.
//
// Дата продления должна лежать в интервале от сегодняшнего дня до четырёх недель
// вперёд. Отказ возвращается как ошибка поля renewal_date.
package renew

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

// Service описывает продление выдачи.
type Service interface {
	Renew(ctx context.Context, id string, proposed, today time.Time) (*models.LoanRecord, error)
}

// Handler обрабатывает POST /loans/{id}/renew.
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
// @Summary Продлить выдачу
// @Tags Loans
// @Accept  json
// @Produce  json
// @Param id path string true "ID экземпляра"
// @Param request body models.DummyRenewal true "Новая дата возврата"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Экземпляр не найден"
// @Failure 409 {object} response.ErrorResponse "Экземпляр не выдан"
// @Failure 422 {object} response.ErrorResponse "Недопустимая дата продления"
// @Security BearerAuth
// @Router /loans/{id}/renew [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.renew"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRenewal
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
	proposed, err := time.Parse(time.DateOnly, req.RenewalDate)
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("renewal_date", "invalid date"))
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := h.service.Renew(r.Context(), id, proposed, h.now())
	switch {
	case errors.Is(err, catalog.ErrInvalidRenewalDate):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FieldError("renewal_date", catalog.RenewalMessage(err)))
		return
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("loan record not found"))
		return
	case errors.Is(err, services.ErrNotOnLoan):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("loan record is not on loan"))
		return
	case err != nil:
		log.Error("failed to renew loan", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not renew loan"))
		return
	}

	log.Info("loan renewed", slog.String("loan_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"loan": rec,
	}))
}
