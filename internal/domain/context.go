// Package domain provides the storefront's canonical types, its error
// taxonomy and request-scoped context helpers.
package domain

import "context"

type ctxKey struct{ name string }

var (
	userKey      = ctxKey{"user"}
	requestIDKey = ctxKey{"request_id"}
)

// NewContextWithUser attaches the signed-in user. The session middleware
// is the only writer.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the signed-in user, or nil for a visitor.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}

// RoleFromContext returns the signed-in user's role, or RoleAnonymous.
func RoleFromContext(ctx context.Context) Role {
	if u := UserFromContext(ctx); u != nil {
		return u.Role
	}
	return RoleAnonymous
}

func IsAuthenticated(ctx context.Context) bool { return UserFromContext(ctx) != nil }

// IsElevated reports whether the user may open the admin shell.
func IsElevated(ctx context.Context) bool { return RoleFromContext(ctx).IsElevated() }

func NewContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the id set by middleware.RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
