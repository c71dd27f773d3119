// Package events publishes storefront activity (cart changes, orders,
// sign-ins) for downstream consumers such as analytics.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	CartItemAdded = "cart.item_added"
	CartUpdated   = "cart.updated"
	OrderCreated  = "order.created"
	OrderFailed   = "order.failed"
	UserLoggedIn  = "auth.login"
	UserSignedUp  = "auth.signup"
	UserLoggedOut = "auth.logout"
)

// Event is one storefront occurrence.
type Event struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	At        time.Time      `json:"at"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher delivers events. Publishing is fire-and-forget from the
// storefront's point of view: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
