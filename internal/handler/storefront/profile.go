package storefront

import (
	"context"
	"errors"
	"net/http"

	"github.com/dukerupert/artesania/internal/auth"
	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/fetch"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/profile"
	"github.com/dukerupert/artesania/internal/session"
	"github.com/dukerupert/artesania/internal/telemetry"
)

const (
	MsgProfileSaved      = "Profile updated."
	MsgProfileNotEditing = "Open the editor before changing your profile."
)

// ProfileLoader fetches the signed-in account's profile into the session,
// once per token. The checkout and profile pages share it.
type ProfileLoader struct {
	api        backend.API
	sessions   *session.Manager
	normalizer profile.Normalizer
}

func NewProfileLoader(api backend.API, sessions *session.Manager, normalizer profile.Normalizer) *ProfileLoader {
	return &ProfileLoader{api: api, sessions: sessions, normalizer: normalizer}
}

// Ensure loads the profile unless it is already loaded. A failed fetch is
// recorded on the session's tracker rather than returned; the only error
// returned besides session failures is EUNAUTHORIZED, which means the
// token is no longer accepted.
func (l *ProfileLoader) Ensure(ctx context.Context) error {
	s := session.FromContext(ctx)
	if s == nil || !s.Authenticated() || s.ProfileFetch.Ready() {
		return nil
	}

	var ticket fetch.Ticket
	if _, err := l.sessions.Update(ctx, func(s *session.Session) error {
		ticket = s.ProfileFetch.Begin()
		return nil
	}); err != nil {
		return err
	}

	raw, err := l.api.FetchProfile(ctx, s.Token)
	if domain.IsCode(err, domain.EUNAUTHORIZED) {
		return err
	}

	// The visitor went away; a newer request owns the tracker now.
	if !fetch.Live(ctx) {
		return ctx.Err()
	}

	_, uerr := l.sessions.Update(ctx, func(s *session.Session) error {
		if err != nil {
			s.ProfileFetch.Fail(ticket, domain.ErrorMessage(err))
			return nil
		}
		if s.ProfileFetch.Succeed(ticket) {
			s.Profile.Load(l.normalizer.Normalize(raw))
		}
		return nil
	})
	if err != nil {
		middleware.GetLogger(ctx).Warn("profile fetch failed", "error", err, "code", domain.ErrorCode(err))
	}
	return uerr
}

// ProfileHandler serves the profile page and its edit flow.
type ProfileHandler struct {
	pages     *Pages
	loader    *ProfileLoader
	api       backend.API
	validator *auth.Validator
	metrics   *telemetry.BusinessMetrics

	// persist sends saved profiles to the marketplace API. Without it
	// saves only change the session copy.
	persist bool
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(pages *Pages, loader *ProfileLoader, api backend.API, v *auth.Validator, metrics *telemetry.BusinessMetrics, persist bool) *ProfileHandler {
	return &ProfileHandler{
		pages:     pages,
		loader:    loader,
		api:       api,
		validator: v,
		metrics:   metrics,
		persist:   persist,
	}
}

// View handles GET /profile
func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	if err := h.loader.Ensure(r.Context()); err != nil {
		if domain.IsCode(err, domain.EUNAUTHORIZED) {
			h.pages.SignOutExpired(w, r)
			return
		}
		handler.InternalErrorResponse(w, r, err)
		return
	}
	h.show(w, r, nil, "")
}

// Edit handles POST /profile/edit
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(e *profile.Editor) error {
		err := e.Edit()
		if errors.Is(err, profile.ErrAlreadyEditing) {
			return nil
		}
		return err
	})
}

// Cancel handles POST /profile/cancel
func (h *ProfileHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(e *profile.Editor) error {
		err := e.Cancel()
		if errors.Is(err, profile.ErrNotEditing) {
			return nil
		}
		return err
	})
}

// Change handles POST /profile/change: one draft field, sent by htmx as the
// shopper types.
func (h *ProfileHandler) Change(w http.ResponseWriter, r *http.Request) {
	field := r.PostFormValue("field")
	value := r.PostFormValue("value")

	_, err := h.pages.Sessions.Update(r.Context(), func(s *session.Session) error {
		return s.Profile.Change(field, value)
	})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, profile.ErrUnknownField):
		handler.ErrorResponse(w, r, domain.Invalid("profile.change", "Unknown profile field."))
	case errors.Is(err, profile.ErrNotEditing):
		handler.ErrorResponse(w, r, domain.Conflict("profile.change", MsgProfileNotEditing))
	default:
		handler.InternalErrorResponse(w, r, err)
	}
}

// Save handles POST /profile/save. Posted fields are applied to the draft,
// the draft is validated and then committed.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("profile.save", "Invalid form data"))
		return
	}

	s, err := h.pages.Sessions.Update(ctx, func(s *session.Session) error {
		if !s.Profile.Editing() {
			return profile.ErrNotEditing
		}
		for _, name := range profile.Fields {
			if values, ok := r.PostForm[name]; ok && len(values) > 0 {
				if err := s.Profile.Change(name, values[0]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if errors.Is(err, profile.ErrNotEditing) {
		handler.Redirect(w, r, "/profile")
		return
	}
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	draft, _ := s.Profile.Displayed()
	if err := h.validator.Profile(draft); err != nil {
		h.metrics.ProfileSaved("invalid")
		h.show(w, r, domain.GetValidationFields(err), auth.FirstMessage(err))
		return
	}

	if h.persist {
		if err := h.api.UpdateProfile(ctx, s.Token, profile.ToPayload(draft)); err != nil {
			if domain.IsCode(err, domain.EUNAUTHORIZED) {
				h.pages.SignOutExpired(w, r)
				return
			}
			logger(r).Warn("profile persist failed", "error", err)
			h.metrics.ProfileSaved("persist_failed")
			h.show(w, r, domain.GetValidationFields(err), domain.ErrorMessage(err))
			return
		}
	}

	if _, err := h.pages.Sessions.Update(ctx, func(s *session.Session) error {
		_, err := s.Profile.Save()
		if err == nil {
			s.SetFlash(session.FlashSuccess, MsgProfileSaved)
		}
		return err
	}); err != nil && !errors.Is(err, profile.ErrNotEditing) {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	h.metrics.ProfileSaved("saved")
	handler.Redirect(w, r, "/profile")
}

func (h *ProfileHandler) transition(w http.ResponseWriter, r *http.Request, fn func(*profile.Editor) error) {
	_, err := h.pages.Sessions.Update(r.Context(), func(s *session.Session) error {
		return fn(&s.Profile)
	})
	if err != nil && !errors.Is(err, profile.ErrNoProfile) {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	if handler.IsHTMX(r) {
		h.show(w, r, nil, "")
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// show renders the profile page, or only its panel for htmx requests.
func (h *ProfileHandler) show(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string, formError string) {
	s := currentSession(r)

	var data map[string]interface{}
	if handler.IsHTMX(r) {
		data = map[string]interface{}{"CSRFToken": middleware.GetCSRFToken(r.Context())}
	} else {
		data = h.pages.BaseTemplateData(r)
	}

	data["Loading"] = s.ProfileFetch.Loading()
	data["LoadError"] = ""
	if s.ProfileFetch.Failed() {
		data["LoadError"] = s.ProfileFetch.Error
	}
	data["Editing"] = s.Profile.Editing()
	if p, ok := s.Profile.Displayed(); ok {
		data["Profile"] = p
		data["Form"] = profile.FormValues(p)
	}
	data["Departments"] = h.validator.Departments()
	data["Errors"] = fieldErrors
	data["FormError"] = formError

	if handler.IsHTMX(r) {
		h.pages.Renderer.RenderPartial(w, "storefront/profile", "profile_panel", data)
		return
	}
	h.pages.Render(w, r, "profile", data)
}
