// Package middleware holds the storefront's HTTP middleware: request ids,
// request-scoped logging, security headers, limits, rate limiting, CSRF,
// metrics, session loading and the auth gates.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/artesania/internal/domain"
)

type contextKey string

const (
	msgTooManyRequests = "Too many requests. Please wait a moment and try again."
	msgTooLarge        = "Request body too large"
)

// fail writes err the way handler.ErrorResponse does. It is duplicated
// here because handler imports this package.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := domain.HTTPStatus(code)

	log := GetLogger(r.Context()).Info
	if status >= http.StatusInternalServerError {
		log = GetLogger(r.Context()).Error
	}
	log("middleware rejected request",
		"error", err,
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	)

	msg := domain.ErrorMessage(err)
	if !wantsJSON(r) {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}

func respondForbidden(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, domain.Forbidden("", message))
}

func respondInternalError(w http.ResponseWriter, r *http.Request, err error) {
	fail(w, r, domain.Internal(err, "", "middleware failure"))
}

func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	fail(w, r, domain.Errorf(domain.ERATELIMIT, "", msgTooManyRequests))
}

func respondTooLarge(w http.ResponseWriter, r *http.Request) {
	fail(w, r, domain.Errorf(domain.ETOOLARGE, "", msgTooLarge))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// redirect sends the browser to url. htmx requests get HX-Redirect so the
// whole page navigates instead of swapping the target.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
