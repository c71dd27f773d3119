package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/session"
)

const loggerKey contextKey = "logger"

// WithRequestLogger stores a logger tagged with the request's method, path,
// request id, session and user. Session and user are only known when the
// request already went through Sessions.
func WithRequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			attrs := []any{slog.String("method", r.Method), slog.String("path", r.URL.Path)}
			if id := GetRequestID(ctx); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if s := session.FromContext(ctx); s != nil {
				attrs = append(attrs, slog.String("session_id", shortID(s.ID)))
			}
			if u := domain.UserFromContext(ctx); u != nil && u.ID != "" {
				attrs = append(attrs, slog.String("user_id", u.ID))
			}

			ctx = context.WithValue(ctx, loggerKey, base.With(attrs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger returns the request logger, else fallback[0], else slog.Default().
func GetLogger(ctx context.Context, fallback ...*slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	for _, l := range fallback {
		if l != nil {
			return l
		}
	}
	return slog.Default()
}

// shortID keeps full session ids out of the logs.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
