package librarycatalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/library-catalog/internal/cache"
	"github.com/magabrotheeeer/library-catalog/internal/config"
	"github.com/magabrotheeeer/library-catalog/internal/http/handlers/health"
	"github.com/magabrotheeeer/library-catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/library-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/library-catalog/internal/migrations"
	"github.com/magabrotheeeer/library-catalog/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/library-catalog/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/library-catalog/internal/services/catalog"
	loanservice "github.com/magabrotheeeer/library-catalog/internal/services/loan"
	overdueservice "github.com/magabrotheeeer/library-catalog/internal/services/overdue"
	"github.com/magabrotheeeer/library-catalog/internal/storage"
)

// App — HTTP-сервер каталога и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection

	overdue         *overdueservice.OverdueService
	overdueInterval time.Duration
}

// New подключает хранилище, кеш и шину событий, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.librarycatalog.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = storage.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	publisher, err := app.setupEvents(ctx, cfg.RabbitMQ)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, logger)
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, logger, cfg.CacheTTL)
	loanService := loanservice.NewLoanService(db, publisher, logger)
	app.overdue = overdueservice.NewOverdueService(db, publisher, logger)
	app.overdueInterval = cfg.OverdueCheckInterval

	if err = authService.EnsureLibrarian(ctx, cfg.LibrarianEmail, cfg.LibrarianUsername, cfg.LibrarianPassword); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Dependencies{
		Auth:    authService,
		Catalog: catalogService,
		Loans:   loanService,
		Health: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
		Limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		Registry: registry,
		Now:      time.Now,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// setupEvents подключается к RabbitMQ и запускает журнал событий выдачи.
// Без URL события не публикуются.
func (a *App) setupEvents(ctx context.Context, cfg config.RabbitMQ) (loanservice.EventPublisher, error) {
	if cfg.RabbitURL == "" {
		a.logger.Info("rabbitmq url is empty, loan events are disabled")
		return rabbitmq.NopPublisher{}, nil
	}

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	a.amqp = conn

	consumeCh, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetLoanQueues())
	if err != nil {
		return nil, err
	}
	pubCh, err := rabbitmq.OpenPublishChannel(conn, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	for _, q := range rabbitmq.GetLoanQueues() {
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, consumeCh, q.QueueName, rabbitmq.AuditHandler(a.logger)); err != nil {
			return nil, err
		}
	}
	return rabbitmq.NewPublisher(pubCh, cfg.Exchange), nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	if a.overdueInterval > 0 {
		go a.overdue.Run(ctx, a.overdueInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
