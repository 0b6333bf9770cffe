// Package list реализует HTTP-обработчик постраничного списка авторов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/page"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/models"
)

type Service interface {
	ListAuthors(ctx context.Context, p page.Request) (page.Page[models.Author], error)
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
// @Summary Список авторов
// @Tags Authors
// @Produce  json
// @Param page query int false "Номер страницы, с 1"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /authors [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.author.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.ListAuthors(r.Context(), page.FromRequest(r))
	if err != nil {
		log.Error("failed to list authors", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list authors"))
		return
	}

	log.Info("list authors", slog.Int("page", res.Number), slog.Int("count", len(res.Entries)))
	render.JSON(w, r, response.OKWithData(res))
}
