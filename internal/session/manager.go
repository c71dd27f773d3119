package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/artesania/internal/cookie"
)

// MsgExpired is flashed when a stored token has expired.
const MsgExpired = "Your session has expired. Please sign in again."

// Manager binds a Store to the session cookie.
type Manager struct {
	store   Store
	cookies *cookie.Config
	ttl     time.Duration
	now     func() time.Time

	onExpired func(ctx context.Context)
}

func NewManager(store Store, cookies *cookie.Config, ttl time.Duration) *Manager {
	return &Manager{store: store, cookies: cookies, ttl: ttl, now: time.Now}
}

// OnExpired registers fn to run whenever Load signs out an expired token.
func (m *Manager) OnExpired(fn func(ctx context.Context)) {
	m.onExpired = fn
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// Load returns the request's session, creating one (and its cookie) when
// the cookie is missing or points at nothing. An expired token is signed
// out before the session is returned.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	ctx := r.Context()

	if id := cookie.Get(r, cookie.SessionCookieName); id != "" {
		s, err := m.store.Get(ctx, id)
		switch {
		case err == nil:
			if s.TokenExpired(m.now()) {
				if m.onExpired != nil {
					m.onExpired(ctx)
				}
				return m.store.Update(ctx, id, func(s *Session) error {
					s.Reset()
					s.SetFlash(FlashWarning, MsgExpired)
					return nil
				})
			}
			return s, nil
		case errors.Is(err, ErrNotFound):
		default:
			// A session that cannot be decoded is replaced rather than
			// locking the visitor out.
			slog.Default().Warn("discarding unreadable session", "error", err)
		}
	}

	s := New(NewID())
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	m.cookies.SetSession(w, cookie.SessionCookieName, s.ID, int(m.ttl.Seconds()))
	return s, nil
}

// Update mutates the session attached to ctx and refreshes the copy held
// in ctx so the rest of the request sees the change.
func (m *Manager) Update(ctx context.Context, fn func(*Session) error) (*Session, error) {
	current := FromContext(ctx)
	if current == nil {
		return nil, ErrNotFound
	}
	s, err := m.store.Update(ctx, current.ID, fn)
	if err != nil {
		return nil, err
	}
	*current = *s
	return current, nil
}

// Rotate applies fn to the request's session and moves it to a fresh id,
// deleting the old record and reissuing the cookie. Use it whenever the
// privilege level changes so an id planted before sign-in never carries
// a token.
func (m *Manager) Rotate(ctx context.Context, w http.ResponseWriter, fn func(*Session) error) (*Session, error) {
	current := FromContext(ctx)
	if current == nil {
		return nil, ErrNotFound
	}
	oldID := current.ID

	s, err := m.store.Get(ctx, oldID)
	switch {
	case errors.Is(err, ErrNotFound):
		cp := *current
		s = &cp
	case err != nil:
		return nil, err
	}

	if err := fn(s); err != nil {
		return nil, err
	}
	s.ID = NewID()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	if err := m.store.Delete(ctx, oldID); err != nil {
		slog.Default().Warn("failed to delete rotated session", "error", err)
	}
	m.cookies.SetSession(w, cookie.SessionCookieName, s.ID, int(m.ttl.Seconds()))

	*current = *s
	return current, nil
}
