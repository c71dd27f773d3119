package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"slices"
	"strings"

	"github.com/dukerupert/artesania/internal/cookie"
)

const (
	// CSRFHeaderName is set on every htmx request through hx-headers on <body>.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormFieldName is the hidden input plain forms carry.
	CSRFFormFieldName = "csrf_token"

	// MsgCSRFRejected is shown when a form post fails the token check.
	MsgCSRFRejected = "Your form expired. Reload the page and try again."

	csrfTokenBytes   = 32
	csrfCookieMaxAge = 24 * 60 * 60

	csrfContextKey contextKey = "csrf_token"
)

var safeMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace}

// CSRFConfig configures CSRF protection.
type CSRFConfig struct {
	CookieConfig *cookie.Config

	// CookieMaxAge in seconds; zero means one day.
	CookieMaxAge int

	// SkipPaths are exempt, matched on path segment boundaries.
	SkipPaths []string

	// ErrorHandler replaces the default 403 response.
	ErrorHandler http.HandlerFunc
}

// DefaultCSRFConfig returns the storefront defaults.
func DefaultCSRFConfig(cookieConfig *cookie.Config) CSRFConfig {
	return CSRFConfig{CookieConfig: cookieConfig, CookieMaxAge: csrfCookieMaxAge}
}

// CSRF is double-submit cookie protection. The token lives in a cookie the
// page can read, and every unsafe request must echo it in CSRFHeaderName
// or CSRFFormFieldName.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieConfig == nil {
		panic("csrf: CookieConfig is required")
	}
	if cfg.CookieMaxAge == 0 {
		cfg.CookieMaxAge = csrfCookieMaxAge
	}
	reject := cfg.ErrorHandler
	if reject == nil {
		reject = func(w http.ResponseWriter, r *http.Request) {
			respondForbidden(w, r, MsgCSRFRejected)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skips(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := cfg.ensureToken(w, r)
			if err != nil {
				respondInternalError(w, r, err)
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfContextKey, token))

			if !slices.Contains(safeMethods, r.Method) && !tokensMatch(token, submittedToken(r)) {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetCSRFToken returns the token pages embed in forms and hx-headers.
func GetCSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfContextKey).(string)
	return token
}

func (cfg CSRFConfig) skips(path string) bool {
	return slices.ContainsFunc(cfg.SkipPaths, func(skip string) bool {
		return underPath(path, skip)
	})
}

// ensureToken returns the visitor's token, minting and setting one on
// first contact.
func (cfg CSRFConfig) ensureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if token := cookie.Get(r, cookie.CSRFCookieName); token != "" {
		return token, nil
	}
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	cfg.CookieConfig.SetReadable(w, cookie.CSRFCookieName, token, cfg.CookieMaxAge)
	return token, nil
}

func submittedToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}
	if r.ParseForm() != nil {
		return ""
	}
	return r.PostFormValue(CSRFFormFieldName)
}

func tokensMatch(want, got string) bool {
	return want != "" && got != "" && subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// underPath reports whether path is prefix or lies below it, so /health
// does not cover /healthz.
func underPath(path, prefix string) bool {
	rest, ok := strings.CutPrefix(path, prefix)
	return ok && (rest == "" || rest[0] == '/' || strings.HasSuffix(prefix, "/"))
}
