package admin

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	request "platewise/pkg/platform/middleware/request"
)

// RequireAdminKey guards mutating admin endpoints. The configured value is a
// bcrypt hash, never the key itself, so a leaked config cannot be replayed.
// An empty hash disables the endpoints entirely.
func RequireAdminKey(expectedHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Admin-Key")
			if expectedHash == "" || bcrypt.CompareHashAndPassword([]byte(expectedHash), []byte(key)) != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin key mismatch",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin key required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
