// Package mine реализует HTTP-обработчик списка книг, выданных текущему пользователю.
//
// Записи упорядочены по сроку возврата, просроченные помечены флагом is_overdue.
package mine

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/page"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

// Service описывает получение выданных пользователю книг.
type Service interface {
	ListMyBorrowed(ctx context.Context, userID string) ([]models.LoanRecord, error)
}

// Handler обрабатывает GET /loans/mine.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// New создает новый Handler. now задаёт текущую дату для признака просрочки.
func New(log *slog.Logger, service Service, now func() time.Time) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     now,
	}
}

// ServeHTTP godoc
// @Summary Мои книги
// @Tags Loans
// @Produce  json
// @Param page query int false "Номер страницы, с 1"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Security BearerAuth
// @Router /loans/mine [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.mine"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	loans, err := h.service.ListMyBorrowed(r.Context(), uid)
	if err != nil {
		log.Error("failed to list borrowed books", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list borrowed books"))
		return
	}

	res := page.Slice(models.MarkOverdue(loans, h.now()), page.FromRequest(r))
	log.Info("list borrowed books", slog.Int("total", res.Total))
	render.JSON(w, r, response.OKWithData(res))
}
