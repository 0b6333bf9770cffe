// Package giveback реализует HTTP-обработчик приёма выданной книги.
package giveback

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
	services "github.com/magabrotheeeer/library-catalog/internal/services/loan"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

type Service interface {
	Return(ctx context.Context, id string) (*models.LoanRecord, error)
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
// @Summary Принять книгу
// @Tags Loans
// @Produce  json
// @Param id path string true "ID экземпляра"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Экземпляр не найден"
// @Failure 409 {object} response.ErrorResponse "Экземпляр не выдан"
// @Security BearerAuth
// @Router /loans/{id}/return [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.giveback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	rec, err := h.service.Return(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("loan record not found"))
		return
	case errors.Is(err, services.ErrNotOnLoan):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("loan record is not on loan"))
		return
	case err != nil:
		log.Error("failed to return book", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not return book"))
		return
	}

	log.Info("book returned", slog.String("loan_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"loan": rec,
	}))
}
