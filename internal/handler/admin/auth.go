package admin

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/artesania/internal/auth"
	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/handler/storefront"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/session"
	"github.com/dukerupert/artesania/internal/telemetry"
)

const (
	MsgAdminRequired = "Access denied. Admin credentials required."
	msgAdminWelcome  = "Signed in as administrator: %s."
)

// LoginHandler handles the admin login page and form submission
type LoginHandler struct {
	pages     *storefront.Pages
	api       backend.API
	validator *auth.Validator
	metrics   *telemetry.BusinessMetrics
}

// NewLoginHandler creates a new admin login handler
func NewLoginHandler(pages *storefront.Pages, api backend.API, v *auth.Validator, metrics *telemetry.BusinessMetrics) *LoginHandler {
	return &LoginHandler{
		pages:     pages,
		api:       api,
		validator: v,
		metrics:   metrics,
	}
}

// ShowForm handles GET /admin/login - displays the admin login form
func (h *LoginHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	if domain.IsElevated(r.Context()) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.showFormWithError(w, r, "", "")
}

func (h *LoginHandler) showFormWithError(w http.ResponseWriter, r *http.Request, formError, email string) {
	data := h.pages.BaseTemplateData(r)
	if formError != "" {
		data["Error"] = formError
	}
	if email != "" {
		data["Email"] = email
	}

	h.pages.Renderer.RenderHTTP(w, "admin/login", data)
}

// HandleSubmit handles POST /admin/login - processes the admin login form
func (h *LoginHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.showFormWithError(w, r, storefront.MsgInvalidForm, "")
		return
	}

	form := auth.ParseLoginForm(r.PostForm)
	if err := h.validator.Login(form); err != nil {
		h.showFormWithError(w, r, auth.FirstMessage(err), form.Email)
		return
	}

	ipAddress := middleware.GetClientIP(r)
	userAgent := r.UserAgent()

	res, err := h.api.AdminLogin(ctx, form.Email, form.Password)
	if err == nil && res.Token == "" {
		err = domain.Unauthorized("admin.login", "Could not sign in as administrator.")
	}
	if err != nil {
		// Audit log: failed login attempt
		slog.Warn("admin: login failed",
			"email", form.Email,
			"code", domain.ErrorCode(err),
			"ip", ipAddress,
			"user_agent", userAgent,
		)
		h.metrics.LoginRejected("admin", domain.ErrorCode(err))
		h.showFormWithError(w, r, domain.ErrorMessage(err), form.Email)
		return
	}

	// The marketplace decides the role; a shopper account is turned away here.
	if !res.User.Role.IsElevated() {
		slog.Warn("admin: non-admin login attempt",
			"email", form.Email,
			"role", string(res.User.Role),
			"ip", ipAddress,
			"user_agent", userAgent,
		)
		h.metrics.LoginRejected("admin", domain.EFORBIDDEN)
		h.showFormWithError(w, r, MsgAdminRequired, form.Email)
		return
	}

	if err := storefront.SignIn(ctx, w, h.pages.Sessions, res, fmt.Sprintf(msgAdminWelcome, res.User.DisplayName())); err != nil {
		slog.Error("admin: failed to store session", "email", form.Email, "error", err)
		handler.InternalErrorResponse(w, r, err)
		return
	}

	slog.Info("admin: login successful",
		"email", form.Email,
		"user_id", res.User.ID,
		"role", string(res.User.Role),
		"ip", ipAddress,
	)
	h.metrics.LoggedIn("admin")
	h.pages.Publish(ctx, events.UserLoggedIn, map[string]any{"role": string(res.User.Role)})

	handler.Redirect(w, r, "/admin")
}

// LogoutHandler handles admin logout
type LogoutHandler struct {
	pages   *storefront.Pages
	api     backend.API
	metrics *telemetry.BusinessMetrics
}

// NewLogoutHandler creates a new admin logout handler
func NewLogoutHandler(pages *storefront.Pages, api backend.API, metrics *telemetry.BusinessMetrics) *LogoutHandler {
	return &LogoutHandler{
		pages:   pages,
		api:     api,
		metrics: metrics,
	}
}

// HandleSubmit handles POST /admin/logout - logs out the admin user
func (h *LogoutHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s := session.FromContext(ctx); s != nil && s.Authenticated() {
		if err := h.api.Logout(ctx, s.Token); err != nil {
			slog.Info("admin: backend logout failed", "error", err)
		}
		h.pages.Publish(ctx, events.UserLoggedOut, map[string]any{"role": string(s.Role())})
		h.metrics.LoggedOut()
	}

	if _, err := h.pages.Sessions.Rotate(ctx, w, func(s *session.Session) error {
		s.Reset()
		return nil
	}); err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	handler.Redirect(w, r, "/admin/login")
}
