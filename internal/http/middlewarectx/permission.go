package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-catalog/internal/http/response"
)

// RequirePermission пропускает запрос дальше, только если у пользователя есть право perm.
// Ставится после JWTMiddleware.
func RequirePermission(perm string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasPermission(r.Context(), perm) {
				user, _ := r.Context().Value(User).(string)
				log.Warn("permission denied",
					slog.String("permission", perm),
					slog.String("username", user),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("permission denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
