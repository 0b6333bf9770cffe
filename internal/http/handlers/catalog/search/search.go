// Package search реализует HTTP-обработчик поиска по каталогу (?q=).
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/catalog"
	"github.com/magabrotheeeer/library-catalog/internal/http/response"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
)

// Service описывает поиск книг и авторов.
type Service interface {
	Search(ctx context.Context, query string) (catalog.SearchResult, error)
}

// Handler обрабатывает GET /search.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск по каталогу
// @Description Ищет подстроку в названиях книг и в именах или фамилиях авторов без учёта регистра.
// @Tags Catalog
// @Produce  json
// @Param q query string false "Строка поиска"
// @Success 200 {object} response.Response
// @Router /search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("q")
	res, err := h.service.Search(r.Context(), query)
	if err != nil {
		log.Error("search failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not search catalog"))
		return
	}

	log.Info("search done", slog.String("query", res.Query),
		slog.Int("books", len(res.Books)), slog.Int("authors", len(res.Authors)))
	render.JSON(w, r, response.OKWithData(res))
}
