// Package borrowed реализует HTTP-обработчик списка всех выданных книг для библиотекаря.
package borrowed

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/page"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

type Service interface {
	ListAllBorrowed(ctx context.Context) ([]models.LoanRecord, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

func New(log *slog.Logger, service Service, now func() time.Time) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     now,
	}
}

// ServeHTTP godoc
// @Summary Все выданные книги
// @Tags Loans
// @Produce  json
// @Param page query int false "Номер страницы, с 1"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Нет права can_mark_returned"
// @Security BearerAuth
// @Router /loans/borrowed [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.borrowed"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	loans, err := h.service.ListAllBorrowed(r.Context())
	if err != nil {
		log.Error("failed to list borrowed books", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list borrowed books"))
		return
	}

	res := page.Slice(models.MarkOverdue(loans, h.now()), page.FromRequest(r))
	log.Info("list all borrowed books", slog.Int("total", res.Total))
	render.JSON(w, r, response.OKWithData(res))
}
