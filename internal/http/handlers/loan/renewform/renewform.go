// Package renewform реализует HTTP-обработчик формы продления: экземпляр
// и предложенная дата возврата.
package renewform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// Service описывает подготовку продления.
type Service interface {
	RenewalForm(ctx context.Context, id string, today time.Time) (*models.LoanRecord, time.Time, error)
}

// Handler обрабатывает GET /loans/{id}/renew.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, now func() time.Time) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     now,
	}
}

// ServeHTTP godoc
// @Summary Предложенная дата продления
// @Tags Loans
// @Produce  json
// @Param id path string true "ID экземпляра"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Экземпляр не найден"
// @Security BearerAuth
// @Router /loans/{id}/renew [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.renewform"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	rec, proposed, err := h.service.RenewalForm(r.Context(), id, h.now())
	if errors.Is(err, storage.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("loan record not found"))
		return
	}
	if err != nil {
		log.Error("failed to prepare renewal", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read loan record"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"loan":                  rec,
		"proposed_renewal_date": proposed.Format(time.DateOnly),
	}))
}
