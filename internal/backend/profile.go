package backend

import (
	"context"
	"net/http"
)

// FetchProfile returns the raw profile of the token's account.
func (c *Client) FetchProfile(ctx context.Context, token string) (map[string]any, error) {
	doc, err := c.do(ctx, call{
		op:       "backend.profile",
		method:   http.MethodGet,
		path:     "/api/auth/profile",
		token:    token,
		fallback: func(int) string { return "Could not load the profile. Please try again." },
	})
	if err != nil {
		return nil, err
	}
	// The profile normalizer unwraps "data" itself; keep the envelope.
	if obj, ok := doc.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{}, nil
}

// UpdateProfile stores edited profile fields, in the marketplace's names.
func (c *Client) UpdateProfile(ctx context.Context, token string, profile map[string]any) error {
	_, err := c.do(ctx, call{
		op:       "backend.update_profile",
		method:   http.MethodPut,
		path:     "/api/auth/profile",
		token:    token,
		body:     profile,
		fallback: func(int) string { return "Could not save the profile." },
	})
	return err
}
