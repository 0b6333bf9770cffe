package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	t.Run("все зависимости доступны", func(t *testing.T) {
		h := New(logger, map[string]Pinger{
			"postgres": pingFunc(func(context.Context) error { return nil }),
			"redis":    redisPinger{client: client},
		})

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"OK","data":{"postgres":"ok","redis":"ok"}}`, w.Body.String())
	})

	t.Run("база недоступна", func(t *testing.T) {
		h := New(logger, map[string]Pinger{
			"postgres": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
			"redis":    redisPinger{client: client},
		})

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t,
			`{"status":"Error","error":"service unavailable","data":{"postgres":"unavailable","redis":"ok"}}`,
			w.Body.String())
	})
}
