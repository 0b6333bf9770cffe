package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

type Service interface {
	Read(ctx context.Context, id string) (*models.LoanRecord, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Экземпляр книги
// @Tags Loans
// @Produce  json
// @Param id path string true "ID экземпляра"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Экземпляр не найден"
// @Security BearerAuth
// @Router /loans/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	rec, err := h.service.Read(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("loan record not found"))
		return
	}
	if err != nil {
		log.Error("failed to read loan record", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read loan record"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"loan": rec,
	}))
}
