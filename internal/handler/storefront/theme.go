package storefront

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/session"
)

// ThemeHandler flips the dark-mode flag kept in the session.
type ThemeHandler struct {
	pages *Pages
}

func NewThemeHandler(pages *Pages) *ThemeHandler {
	return &ThemeHandler{pages: pages}
}

// Toggle handles POST /theme
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, err := h.pages.Sessions.Update(r.Context(), func(s *session.Session) error {
		s.Dark = !s.Dark
		return nil
	})
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	// htmx swaps the toggle button and flips the class on <html> itself.
	if handler.IsHTMX(r) {
		h.pages.Renderer.RenderPartial(w, "storefront/home", "theme_toggle", map[string]interface{}{
			"Dark":      s.Dark,
			"CSRFToken": middleware.GetCSRFToken(r.Context()),
		})
		return
	}
	http.Redirect(w, r, returnPath(r, "/"), http.StatusSeeOther)
}
