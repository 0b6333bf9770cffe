// Package librarycatalog собирает HTTP-приложение каталога библиотеки.
package librarycatalog

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/auth/register"
	authorcreate "github.com/magabrotheeeer/library-catalog/internal/http/handlers/author/create"
	authorlist "github.com/magabrotheeeer/library-catalog/internal/http/handlers/author/list"
	authorread "github.com/magabrotheeeer/library-catalog/internal/http/handlers/author/read"
	authorremove "github.com/magabrotheeeer/library-catalog/internal/http/handlers/author/remove"
	authorupdate "github.com/magabrotheeeer/library-catalog/internal/http/handlers/author/update"
	bookcreate "github.com/magabrotheeeer/library-catalog/internal/http/handlers/book/create"
	booklist "github.com/magabrotheeeer/library-catalog/internal/http/handlers/book/list"
	bookread "github.com/magabrotheeeer/library-catalog/internal/http/handlers/book/read"
	bookremove "github.com/magabrotheeeer/library-catalog/internal/http/handlers/book/remove"
	bookupdate "github.com/magabrotheeeer/library-catalog/internal/http/handlers/book/update"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/catalog/index"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/catalog/search"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/health"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/borrowed"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/checkout"
	loancreate "github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/create"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/giveback"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/mine"
	loanread "github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/read"
	loanremove "github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/remove"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/renew"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/loan/renewform"
	profileedit "github.com/magabrotheeeer/library-catalog/internal/http/handlers/profile/edit"
	profileread "github.com/magabrotheeeer/library-catalog/internal/http/handlers/profile/read"
	"github.com/magabrotheeeer/library-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-catalog/internal/models"
	authservice "github.com/magabrotheeeer/library-catalog/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/library-catalog/internal/services/catalog"
	loanservice "github.com/magabrotheeeer/library-catalog/internal/services/loan"
)

// Dependencies — всё, что нужно маршрутам.
type Dependencies struct {
	Auth     *authservice.AuthService
	Catalog  *catalogservice.CatalogService
	Loans    *loanservice.LoanService
	Health   map[string]health.Pinger
	Limiter  *rate.Limiter
	Registry *prometheus.Registry
	Now      func() time.Time
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Dependencies) {
	metrics := middlewarectx.NewMetrics(deps.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	canMarkReturned := middlewarectx.RequirePermission(models.PermMarkReturned, logger)
	canEditCatalog := middlewarectx.RequirePermission(models.PermEditCatalog, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(deps.Limiter, logger))
			r.Post("/register", register.New(logger, deps.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, deps.Auth).ServeHTTP)
		})
		r.Get("/authors", authorlist.New(logger, deps.Catalog).ServeHTTP)
		r.Get("/authors/{id}", authorread.New(logger, deps.Catalog).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Auth, logger))

			r.Get("/", index.New(logger, deps.Catalog).ServeHTTP)
			r.Get("/books", booklist.New(logger, deps.Catalog).ServeHTTP)
			r.Get("/books/{id}", bookread.New(logger, deps.Catalog).ServeHTTP)
			r.Get("/search", search.New(logger, deps.Catalog).ServeHTTP)
			r.Get("/profile/{uid}", profileread.New(logger, deps.Auth).ServeHTTP)
			r.Put("/profile", profileedit.New(logger, deps.Auth).ServeHTTP)
			r.Get("/loans/mine", mine.New(logger, deps.Loans, deps.Now).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(canMarkReturned)
				r.Get("/loans/borrowed", borrowed.New(logger, deps.Loans, deps.Now).ServeHTTP)
				r.Get("/loans/{id}", loanread.New(logger, deps.Loans).ServeHTTP)
				r.Get("/loans/{id}/renew", renewform.New(logger, deps.Loans, deps.Now).ServeHTTP)
				r.Post("/loans/{id}/renew", renew.New(logger, deps.Loans, deps.Now).ServeHTTP)
				r.Post("/loans/{id}/checkout", checkout.New(logger, deps.Loans, deps.Now).ServeHTTP)
				r.Post("/loans/{id}/return", giveback.New(logger, deps.Loans).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(canEditCatalog)
				r.Post("/books", bookcreate.New(logger, deps.Catalog).ServeHTTP)
				r.Put("/books/{id}", bookupdate.New(logger, deps.Catalog).ServeHTTP)
				r.Delete("/books/{id}", bookremove.New(logger, deps.Catalog).ServeHTTP)
				r.Post("/authors", authorcreate.New(logger, deps.Catalog).ServeHTTP)
				r.Put("/authors/{id}", authorupdate.New(logger, deps.Catalog).ServeHTTP)
				r.Delete("/authors/{id}", authorremove.New(logger, deps.Catalog).ServeHTTP)
				r.Post("/loans", loancreate.New(logger, deps.Loans).ServeHTTP)
				r.Delete("/loans/{id}", loanremove.New(logger, deps.Loans).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, deps.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
