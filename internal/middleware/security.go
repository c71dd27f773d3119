package middleware

import (
	"net/http"
	"strconv"
)

// SecurityHeadersConfig lists the headers set on every response. Empty
// fields are not sent.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
	PermissionsPolicy     string

	// HSTSMaxAge in seconds; 0 leaves HSTS off for local development.
	HSTSMaxAge int
}

// DefaultSecurityHeadersConfig allows htmx from unpkg and product images
// from any https host, since the marketplace serves them from elsewhere.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self'; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=(), payment=()",
		HSTSMaxAge:            365 * 24 * 60 * 60,
	}
}

func (c SecurityHeadersConfig) headers() http.Header {
	h := http.Header{}
	set := func(k, v string) {
		if v != "" {
			h.Set(k, v)
		}
	}
	set("Content-Security-Policy", c.ContentSecurityPolicy)
	set("X-Frame-Options", c.FrameOptions)
	set("Referrer-Policy", c.ReferrerPolicy)
	set("Permissions-Policy", c.PermissionsPolicy)
	if c.ContentTypeNosniff {
		h.Set("X-Content-Type-Options", "nosniff")
	}
	if c.HSTSMaxAge > 0 {
		h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(c.HSTSMaxAge)+"; includeSubDomains")
	}
	return h
}

// SecurityHeaders sets the configured headers before the handler runs.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	fixed := config.headers()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range fixed {
				w.Header()[k] = v
			}
			next.ServeHTTP(w, r)
		})
	}
}
