package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

const clientIPKey contextKey = "client_ip"

// WithClientIP resolves the client address once per request so the rate
// limiter and the auth logs agree on it. Proxy headers are trusted: the
// storefront is only deployed behind a reverse proxy.
func WithClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), clientIPKey, GetClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIP returns the address stored by WithClientIP, falling back to
// X-Forwarded-For, X-Real-IP and finally RemoteAddr.
func GetClientIP(r *http.Request) string {
	if ip, _ := r.Context().Value(clientIPKey).(string); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
