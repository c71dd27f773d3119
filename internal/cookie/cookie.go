// Package cookie provides the storefront's cookie helpers. Every cookie the
// storefront sets goes through a Config so domain, path and flags stay
// consistent.
package cookie

import "net/http"

// Config holds cookie configuration.
type Config struct {
	// Domain scopes cookies to a parent domain (e.g., "artesania.bo").
	// Empty means host-only cookies.
	Domain string

	// Secure determines whether cookies require HTTPS.
	// Should be true in production, false in development.
	Secure bool
}

// NewConfig creates a new cookie configuration.
//
// Example:
//
//	cfg := cookie.NewConfig("artesania.bo", true) // production
//	cfg := cookie.NewConfig("", false)            // development
func NewConfig(domain string, secure bool) *Config {
	return &Config{
		Domain: domain,
		Secure: secure,
	}
}

func (c *Config) base(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSession sets an HttpOnly, SameSite=Lax cookie on "/".
// A maxAge of 0 makes it a browser-session cookie.
func (c *Config) SetSession(w http.ResponseWriter, name, value string, maxAge int) {
	ck := c.base(name, value)
	ck.MaxAge = maxAge
	http.SetCookie(w, ck)
}

// SetReadable sets a cookie that scripts may read (the CSRF token).
func (c *Config) SetReadable(w http.ResponseWriter, name, value string, maxAge int) {
	ck := c.base(name, value)
	ck.HttpOnly = false
	ck.SameSite = http.SameSiteStrictMode
	ck.MaxAge = maxAge
	http.SetCookie(w, ck)
}

// Get retrieves a cookie value from the request.
// Returns empty string if cookie not found.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Cookie names used throughout the application.
const (
	// SessionCookieName holds the opaque session id.
	SessionCookieName = "artesania_session"

	// CSRFCookieName stores the CSRF token for form protection.
	CSRFCookieName = "artesania_csrf"
)
