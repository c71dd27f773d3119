package middleware

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/session"
)

// MsgSignInRequired is flashed when an anonymous visitor opens a page that needs a token.
const MsgSignInRequired = "Sign in to continue."

// RequireAuth sends anonymous visitors to the login page with a flash.
func RequireAuth(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if domain.IsAuthenticated(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			_, err := manager.Update(r.Context(), func(s *session.Session) error {
				s.SetFlash(session.FlashInfo, MsgSignInRequired)
				return nil
			})
			if err != nil {
				GetLogger(r.Context()).Warn("failed to store sign-in flash", "error", err)
			}
			redirect(w, r, "/login")
		})
	}
}

// RequireElevated guards the admin shell. Anonymous visitors go to the admin
// login; signed-in shoppers without an elevated role get forbidden.
func RequireElevated(forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case !domain.IsAuthenticated(r.Context()):
				redirect(w, r, "/admin/login")
			case !domain.IsElevated(r.Context()):
				if forbidden == nil {
					respondForbidden(w, r, "You don't have permission to access this page.")
					return
				}
				forbidden.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
