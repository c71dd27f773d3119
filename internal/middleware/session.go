package middleware

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/session"
)

// Sessions loads the visitor's session (creating it if needed) and puts it
// in the request context. When the session holds a token, the signed-in
// user is added to the context as well.
func Sessions(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := manager.Load(w, r)
			if err != nil {
				respondInternalError(w, r, err)
				return
			}

			ctx := session.NewContext(r.Context(), s)
			if s.Authenticated() {
				user := s.User
				if user == nil {
					user = &domain.User{}
				}
				ctx = domain.NewContextWithUser(ctx, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
