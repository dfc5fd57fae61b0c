package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// SecretHeader carries the shared secret for internal-only endpoints.
const SecretHeader = "X-Internal-Secret"

// RequireInternalSecret guards endpoints that may only be called by trusted
// internal schedulers. The comparison is constant-time so the secret cannot
// be recovered through timing.
func RequireInternalSecret(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			provided := r.Header.Get(SecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				logger.WarnContext(ctx, "unauthorized internal call",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				if _, err := w.Write([]byte(`{"error":"unauthorized","error_description":"Missing or invalid internal secret"}`)); err != nil {
					logger.ErrorContext(ctx, "failed to write unauthorized response", "error", err)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
