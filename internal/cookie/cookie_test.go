package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_SetSession(t *testing.T) {
	cfg := NewConfig("artesania.bo", true)
	rec := httptest.NewRecorder()

	cfg.SetSession(rec, SessionCookieName, "abc", 3600)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "artesania.bo", c.Domain)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestConfig_SetReadable(t *testing.T) {
	rec := httptest.NewRecorder()
	NewConfig("", false).SetReadable(rec, CSRFCookieName, "tok", 60)

	c := rec.Result().Cookies()[0]
	assert.False(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", Get(req, SessionCookieName))

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "xyz"})
	assert.Equal(t, "xyz", Get(req, SessionCookieName))
}
