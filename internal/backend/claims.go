package backend

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the storefront reads from a bearer token. The
// marketplace signs its tokens; the storefront never verifies them, it only
// uses them to know when a session ends and which role it was issued for.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// ReadClaims parses token without verifying its signature. Opaque or
// malformed tokens yield empty claims and false.
func ReadClaims(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, false
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	return c, true
}

// Expired reports whether the claims carry an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
