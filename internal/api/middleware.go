package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sammie3077/goodstracker/internal/auth"
	"github.com/sammie3077/goodstracker/internal/store"
)

// accessPasswordKey stores the bcrypt hash of the optional access password.
const accessPasswordKey = "access_password_hash"

// AccessMiddleware requires a valid bearer token when an access password is
// configured. With no password set the tracker is open, which is the normal
// single-user local setup.
func AccessMiddleware(db *sql.DB, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hash, err := store.GetSetting(r.Context(), db, accessPasswordKey)
			if err != nil {
				jsonError(w, http.StatusInternalServerError, "failed to check access settings")
				return
			}
			if hash == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			if err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer ")); err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
