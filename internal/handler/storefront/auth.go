package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/artesania/internal/auth"
	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/session"
	"github.com/dukerupert/artesania/internal/telemetry"
)

const (
	MsgLoginFailed    = "Could not sign in."
	MsgRegistered     = "Account created. You can sign in now."
	MsgSignedOut      = "You have signed out."
	MsgInvalidForm    = "Invalid form data"
	msgWelcomeBackFmt = "Welcome back, %s."
	msgWelcomeFmt     = "Welcome, %s."
)

// AuthHandler handles sign-in, sign-up and sign-out for shoppers.
type AuthHandler struct {
	pages     *Pages
	api       backend.API
	validator *auth.Validator
	metrics   *telemetry.BusinessMetrics
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(pages *Pages, api backend.API, v *auth.Validator, metrics *telemetry.BusinessMetrics) *AuthHandler {
	return &AuthHandler{
		pages:     pages,
		api:       api,
		validator: v,
		metrics:   metrics,
	}
}

// ShowLogin handles GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if currentSession(r).Authenticated() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, "", "")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, formError, email string) {
	data := h.pages.BaseTemplateData(r)
	data["Error"] = formError
	data["Email"] = email
	h.pages.Render(w, r, "login", data)
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, MsgInvalidForm, "")
		return
	}

	form := auth.ParseLoginForm(r.PostForm)
	if err := h.validator.Login(form); err != nil {
		h.renderLogin(w, r, auth.FirstMessage(err), form.Email)
		return
	}

	res, err := h.api.Login(ctx, form.Email, form.Password)
	if err == nil && res.Token == "" {
		err = domain.Unauthorized("auth.login", MsgLoginFailed)
	}
	if err != nil {
		logger(r).Warn("login failed",
			"email", form.Email,
			"code", domain.ErrorCode(err),
			"ip", middleware.GetClientIP(r),
		)
		h.metrics.LoginRejected("customer", domain.ErrorCode(err))
		h.renderLogin(w, r, domain.ErrorMessage(err), form.Email)
		return
	}

	if err := SignIn(ctx, w, h.pages.Sessions, res, fmt.Sprintf(msgWelcomeBackFmt, res.User.DisplayName())); err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	h.metrics.LoggedIn("customer")
	h.pages.Publish(ctx, events.UserLoggedIn, map[string]any{"role": string(res.User.Role)})
	logger(r).Info("user logged in", slog.String("user_id", res.User.ID))

	handler.Redirect(w, r, "/profile")
}

// ShowRegister handles GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if currentSession(r).Authenticated() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, auth.RegisterForm{}, nil, "")
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, form auth.RegisterForm, fieldErrors map[string]string, formError string) {
	data := h.pages.BaseTemplateData(r)
	data["Form"] = form
	data["Errors"] = fieldErrors
	data["Error"] = formError
	data["Departments"] = h.validator.Departments()
	data["Strength"] = auth.PasswordStrength(form.Password)
	h.pages.Render(w, r, "register", data)
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, auth.RegisterForm{}, nil, MsgInvalidForm)
		return
	}

	form := auth.ParseRegisterForm(r.PostForm)
	if err := h.validator.Register(form); err != nil {
		h.renderRegister(w, r, form, domain.GetValidationFields(err), auth.FirstMessage(err))
		return
	}

	res, err := h.api.Register(ctx, form.Request())
	if err != nil {
		logger(r).Warn("registration failed", "email", form.Email, "code", domain.ErrorCode(err))
		h.renderRegister(w, r, form, nil, domain.ErrorMessage(err))
		return
	}

	h.metrics.SignedUp()
	h.pages.Publish(ctx, events.UserSignedUp, nil)

	// Without a token the new account still has to sign in.
	if res.Token == "" {
		h.pages.FlashRedirect(w, r, session.FlashSuccess, MsgRegistered, "/login")
		return
	}

	if res.User.FirstName == "" {
		res.User.FirstName = form.FirstName
	}
	if res.User.Email == "" {
		res.User.Email = form.Email
	}
	if err := SignIn(ctx, w, h.pages.Sessions, res, fmt.Sprintf(msgWelcomeFmt, res.User.DisplayName())); err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}
	h.metrics.LoggedIn("customer")
	handler.Redirect(w, r, "/profile")
}

// Strength handles POST /register/strength, the htmx password meter.
func (h *AuthHandler) Strength(w http.ResponseWriter, r *http.Request) {
	strength := auth.PasswordStrength(r.PostFormValue("password"))
	h.pages.Renderer.RenderPartial(w, "storefront/register", "password_strength", strength)
}

// Logout handles POST /logout. The marketplace is told on a best-effort
// basis; the session is reset either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := currentSession(r)

	if s.Authenticated() {
		if err := h.api.Logout(ctx, s.Token); err != nil {
			logger(r).Info("backend logout failed", "error", err)
		}
		h.pages.Publish(ctx, events.UserLoggedOut, nil)
		h.metrics.LoggedOut()
	}

	if _, err := h.pages.Sessions.Rotate(ctx, w, func(s *session.Session) error {
		s.Reset()
		s.SetFlash(session.FlashInfo, MsgSignedOut)
		return nil
	}); err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	handler.Redirect(w, r, "/")
}

// SignIn stores the credentials under a fresh session id and queues a
// greeting.
func SignIn(ctx context.Context, w http.ResponseWriter, sessions *session.Manager, res *backend.AuthResult, greeting string) error {
	_, err := sessions.Rotate(ctx, w, func(s *session.Session) error {
		s.SignIn(res.Token, res.User, res.ExpiresAt)
		s.SetFlash(session.FlashSuccess, greeting)
		return nil
	})
	return err
}
