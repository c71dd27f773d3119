package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/payload"
)

// AuthResult is a successful login or registration.
type AuthResult struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

// RegisterRequest is the sign-up form in the marketplace's field names.
type RegisterRequest struct {
	FirstName            string `json:"first_name"`
	PaternalSurname      string `json:"f_last_name"`
	MaternalSurname      string `json:"s_last_name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Phone                string `json:"phone"`
	Department           string `json:"departamento"`
	City                 string `json:"city"`
	Address              string `json:"address"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs a shopper in.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, call{
		op:     "backend.login",
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   credentials{Email: email, Password: password},
		fallback: func(status int) string {
			return fmt.Sprintf("Error %d: check your credentials.", status)
		},
	})
}

// AdminLogin signs an administrator in.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, call{
		op:       "backend.admin_login",
		method:   http.MethodPost,
		path:     "/api/auth/admin/login",
		body:     credentials{Email: email, Password: password},
		fallback: func(int) string { return "Could not sign in as administrator." },
	})
}

// Register creates an account. The marketplace may or may not sign the new
// account in; a result without a token is still a success.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	return c.authenticate(ctx, call{
		op:       "backend.register",
		method:   http.MethodPost,
		path:     "/api/auth/register",
		body:     req,
		fallback: func(int) string { return "Could not complete the registration. Please try again later." },
	})
}

// Logout tells the marketplace the token is no longer in use.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, call{
		op:     "backend.logout",
		method: http.MethodPost,
		path:   "/api/auth/logout",
		token:  token,
	})
	return err
}

func (c *Client) authenticate(ctx context.Context, cl call) (*AuthResult, error) {
	doc, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	return ParseAuthResult(doc), nil
}

// ParseAuthResult reads the token from token or access_token and the user
// from user or data.user, at the top level or inside a data envelope. A
// missing role is taken from the token's claims.
func ParseAuthResult(doc any) *AuthResult {
	root, _ := payload.Object(doc)
	data, _ := payload.Object(root["data"])

	res := &AuthResult{
		Token: payload.FirstText(root, "token", "access_token"),
	}
	if res.Token == "" {
		res.Token = payload.FirstText(data, "token", "access_token")
	}

	user, ok := payload.Object(root["user"])
	if !ok {
		user, _ = payload.Object(data["user"])
	}
	res.User = domain.User{
		ID:        payload.Text(user["id"]),
		Email:     payload.Text(user["email"]),
		FirstName: payload.FirstText(user, "first_name", "name", "nombre"),
		Role:      domain.Role(payload.Text(user["role"])),
	}

	if claims, ok := ReadClaims(res.Token); ok {
		res.ExpiresAt = claims.ExpiresAt
		if res.User.Role.IsAnonymous() {
			res.User.Role = domain.Role(claims.Role)
		}
		if res.User.ID == "" {
			res.User.ID = claims.Subject
		}
	}
	return res
}
