package storefront

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/session"
	"github.com/dukerupert/artesania/internal/telemetry"
)

// Pages renders storefront templates with the layout data every page needs.
type Pages struct {
	Renderer  *handler.Renderer
	Sessions  *session.Manager
	Events    events.Publisher
	Metrics   *telemetry.BusinessMetrics
	StoreName string
}

// BaseTemplateData returns common data for all templates. The queued
// flash message is consumed here, so it shows on exactly one page.
func (p *Pages) BaseTemplateData(r *http.Request) map[string]interface{} {
	ctx := r.Context()

	data := map[string]interface{}{
		"Year":        time.Now().Year(),
		"StoreName":   p.StoreName,
		"CurrentPath": r.URL.Path,
		"CSRFToken":   middleware.GetCSRFToken(ctx),
	}

	s := session.FromContext(ctx)
	if s == nil {
		return data
	}

	data["Dark"] = s.Dark
	data["CartCount"] = s.Cart.Totals().Quantity
	if s.Authenticated() && s.User != nil {
		data["User"] = s.User
		data["Elevated"] = s.Role().IsElevated()
	}

	if s.Flash != nil {
		var flash *session.Flash
		if _, err := p.Sessions.Update(ctx, func(s *session.Session) error {
			flash = s.PopFlash()
			return nil
		}); err != nil {
			middleware.GetLogger(ctx).Warn("failed to consume flash", "error", err)
		}
		if flash != nil {
			data["Flash"] = flash
		}
	}

	return data
}

// Render renders a full storefront page.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	p.Renderer.RenderHTTP(w, "storefront/"+name, data)
}

// NotFound renders the storefront 404 page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Renderer.RenderStatus(w, http.StatusNotFound, "storefront/404", p.BaseTemplateData(r))
}

// Flash queues a notification for the next rendered page.
func (p *Pages) Flash(ctx context.Context, kind, message string) {
	if _, err := p.Sessions.Update(ctx, func(s *session.Session) error {
		s.SetFlash(kind, message)
		return nil
	}); err != nil {
		middleware.GetLogger(ctx).Warn("failed to set flash", "error", err)
	}
}

// FlashRedirect queues a notification and redirects.
func (p *Pages) FlashRedirect(w http.ResponseWriter, r *http.Request, kind, message, url string) {
	p.Flash(r.Context(), kind, message)
	handler.Redirect(w, r, url)
}

// SignOutExpired handles a token the marketplace API no longer accepts:
// the session is reset and the shopper is sent to the login page.
func (p *Pages) SignOutExpired(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := p.Sessions.Rotate(ctx, w, func(s *session.Session) error {
		s.Reset()
		s.SetFlash(session.FlashWarning, session.MsgExpired)
		return nil
	}); err != nil {
		middleware.GetLogger(ctx).Warn("failed to reset session", "error", err)
	}
	p.Metrics.SessionExpired()
	handler.Redirect(w, r, "/login")
}

// Publish emits a storefront event. Failures are logged and otherwise ignored.
func (p *Pages) Publish(ctx context.Context, eventType string, data map[string]any) {
	if p.Events == nil {
		return
	}

	e := events.Event{
		Type:      eventType,
		RequestID: domain.RequestIDFromContext(ctx),
		At:        time.Now().UTC(),
		Data:      data,
	}
	if s := session.FromContext(ctx); s != nil {
		e.SessionID = s.ID
		if s.User != nil {
			e.UserID = s.User.ID
		}
	}

	if err := p.Events.Publish(ctx, e); err != nil {
		middleware.GetLogger(ctx).Warn("failed to publish event", "type", eventType, "error", err)
	}
}

// currentSession returns the request's session. The Sessions middleware
// guarantees one on every storefront route.
func currentSession(r *http.Request) *session.Session {
	if s := session.FromContext(r.Context()); s != nil {
		return s
	}
	return session.New("")
}

func logger(r *http.Request) *slog.Logger {
	return middleware.GetLogger(r.Context())
}
