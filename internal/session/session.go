// Package session keeps per-visitor UI state on the server: the bearer
// token, the cart, the theme, the profile editor, the last order
// confirmation and a one-shot flash message. Sessions are addressed by an
// opaque id carried in a cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/artesania/internal/cart"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/fetch"
	"github.com/dukerupert/artesania/internal/profile"
)

var ErrNotFound = errors.New("session not found")

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a notification shown once on the next rendered page.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session is one visitor's state.
type Session struct {
	ID string `json:"id"`

	Token          string       `json:"token,omitempty"`
	User           *domain.User `json:"user,omitempty"`
	TokenExpiresAt time.Time    `json:"tokenExpiresAt"`

	Dark bool       `json:"dark,omitempty"`
	Cart *cart.Cart `json:"cart"`

	Profile      profile.Editor `json:"profile"`
	ProfileFetch fetch.Tracker  `json:"profileFetch"`

	Order      *domain.OrderConfirmation `json:"order,omitempty"`
	OrderError string                    `json:"orderError,omitempty"`

	Flash *Flash `json:"flash,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// New returns an empty session.
func New(id string) *Session {
	return &Session{
		ID:        id,
		Cart:      cart.New(),
		CreatedAt: time.Now().UTC(),
	}
}

// Authenticated reports whether the session holds a token.
func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// Role returns the signed-in user's role, or RoleAnonymous.
func (s *Session) Role() domain.Role {
	if s.User == nil || s.Token == "" {
		return domain.RoleAnonymous
	}
	return s.User.Role
}

// TokenExpired reports whether the stored token's expiry has passed.
func (s *Session) TokenExpired(now time.Time) bool {
	return s.Token != "" && !s.TokenExpiresAt.IsZero() && !now.Before(s.TokenExpiresAt)
}

// SignIn stores credentials. Per-account state from a previous user is
// dropped; the cart and theme are kept.
func (s *Session) SignIn(token string, user domain.User, expiresAt time.Time) {
	s.Token = token
	s.User = &user
	s.TokenExpiresAt = expiresAt
	s.Profile.Clear()
	s.ProfileFetch.Reset()
	s.Order = nil
	s.OrderError = ""
}

// Reset clears everything but the id, as on logout.
func (s *Session) Reset() {
	*s = *New(s.ID)
}

// SetFlash queues a notification.
func (s *Session) SetFlash(kind, message string) {
	s.Flash = &Flash{Type: kind, Message: message}
}

// PopFlash returns and clears the queued notification.
func (s *Session) PopFlash() *Flash {
	f := s.Flash
	s.Flash = nil
	return f
}

func encode(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decode(data []byte) (*Session, error) {
	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.Cart == nil {
		s.Cart = cart.New()
	}
	return s, nil
}

type contextKey struct{}

// NewContext attaches s to ctx.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
