package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/artesania/internal/cookie"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/session"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps upstream id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "lb-123")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "lb-123", seen)
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Len(t, seen, 36)
	})
}

func TestWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	h := RequestID(WithRequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		GetLogger(r.Context()).Info("handled")
	})))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req = req.WithContext(domain.NewContextWithUser(req.Context(), &domain.User{ID: "42"}))
	req = req.WithContext(session.NewContext(req.Context(), session.New("0123456789abcdef")))
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "path=/cart")
	assert.Contains(t, out, "user_id=42")
	assert.Contains(t, out, "session_id=01234567 ")
	assert.Contains(t, out, "request_id=")
}

func TestGetLogger_Fallback(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, fallback, GetLogger(context.Background(), fallback))
	assert.Same(t, slog.Default(), GetLogger(context.Background()))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.1"}, "10.0.0.2:80", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": " 2.2.2.2 "}, "10.0.0.2:80", "2.2.2.2"},
		{"remote addr", nil, "3.3.3.3:5555", "3.3.3.3"},
		{"remote without port", nil, "4.4.4.4", "4.4.4.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(DefaultSecurityHeadersConfig())(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "https://unpkg.com")
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	cfg := DefaultSecurityHeadersConfig()
	cfg.HSTSMaxAge = 0
	w = httptest.NewRecorder()
	SecurityHeaders(cfg)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(8)(ok)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader("product_id=123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader("id=1")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	w := httptest.NewRecorder()
	Timeout(10*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	Timeout(time.Second)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.5,
		BurstSize:         2,
		KeyFunc:           func(r *http.Request) string { return r.Header.Get("X-Key") },
	})
	defer rl.Stop()
	h := rl.Middleware(ok)

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Key", key)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("a").Code)
	assert.Equal(t, http.StatusOK, send("a").Code)

	limited := send("a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "2", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("b").Code, "keys are limited independently")
	rl.Stop()
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/17", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/18", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/orders/:id", "404")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/static/*", normalizePath("/static/css/app.css"))
	assert.Equal(t, "/orders/:id", normalizePath("/orders/99"))
	assert.Equal(t, "/cart/add", normalizePath("/cart/add"))
	assert.Equal(t, "/products", normalizePath("/products"))
	assert.Equal(t, "other", normalizePath("/wp-admin.php"))
}

func newManager() *session.Manager {
	return session.NewManager(session.NewMemoryStore(time.Hour), cookie.NewConfig("", false), time.Hour)
}

func TestSessions(t *testing.T) {
	manager := newManager()

	var got *session.Session
	var user *domain.User
	h := Sessions(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.FromContext(r.Context())
		user = domain.UserFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, got)
	assert.Nil(t, user, "new sessions are anonymous")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie.SessionCookieName, cookies[0].Name)

	_, err := manager.Store().Update(context.Background(), got.ID, func(s *session.Session) error {
		s.SignIn("tok", domain.User{ID: "9", Role: "admin"}, time.Now().Add(time.Hour))
		return nil
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, user)
	assert.Equal(t, "9", user.ID)
}

func withSession(t *testing.T, manager *session.Manager, user *domain.User) *http.Request {
	t.Helper()
	s := session.New(session.NewID())
	require.NoError(t, manager.Store().Save(context.Background(), s))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	ctx := session.NewContext(req.Context(), s)
	if user != nil {
		ctx = domain.NewContextWithUser(ctx, user)
	}
	return req.WithContext(ctx)
}

func TestRequireAuth(t *testing.T) {
	manager := newManager()
	h := RequireAuth(manager)(ok)

	w := httptest.NewRecorder()
	req := withSession(t, manager, nil)
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	stored, err := manager.Store().Get(context.Background(), session.FromContext(req.Context()).ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Flash)
	assert.Equal(t, MsgSignInRequired, stored.Flash.Message)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, withSession(t, manager, &domain.User{ID: "1"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_HTMX(t *testing.T) {
	manager := newManager()
	req := withSession(t, manager, nil)
	req.Header.Set("HX-Request", "true")

	w := httptest.NewRecorder()
	RequireAuth(manager)(ok).ServeHTTP(w, req)

	assert.Equal(t, "/login", w.Header().Get("HX-Redirect"))
}

func TestRequireElevated(t *testing.T) {
	manager := newManager()
	forbidden := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("no permission"))
	})
	h := RequireElevated(forbidden)(ok)

	tests := []struct {
		name     string
		user     *domain.User
		wantCode int
	}{
		{"anonymous", nil, http.StatusSeeOther},
		{"client", &domain.User{ID: "1", Role: domain.RoleClient}, http.StatusForbidden},
		{"client any case", &domain.User{ID: "1", Role: "Client"}, http.StatusForbidden},
		{"admin", &domain.User{ID: "2", Role: "admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, withSession(t, manager, tt.user))
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusSeeOther {
				assert.Equal(t, "/admin/login", w.Header().Get("Location"))
			}
		})
	}
}

func TestCSRF(t *testing.T) {
	h := CSRF(DefaultCSRFConfig(cookie.NewConfig("", false)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetCSRFToken(r.Context())))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value
	assert.Equal(t, cookie.CSRFCookieName, cookies[0].Name)
	assert.False(t, cookies[0].HttpOnly, "htmx reads the token")
	assert.Equal(t, token, w.Body.String())

	post := func(form url.Values, header string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookies[0])
		if header != "" {
			req.Header.Set(CSRFHeaderName, header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post(url.Values{CSRFFormFieldName: {token}}, ""))
	assert.Equal(t, http.StatusOK, post(url.Values{}, token))
	assert.Equal(t, http.StatusForbidden, post(url.Values{CSRFFormFieldName: {"forged"}}, ""))
	assert.Equal(t, http.StatusForbidden, post(url.Values{}, ""))
}

func TestCSRF_SkipPaths(t *testing.T) {
	cfg := DefaultCSRFConfig(cookie.NewConfig("", false))
	cfg.SkipPaths = []string{"/health"}
	h := CSRF(cfg)(ok)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFail_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	respondTooManyRequests(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"code":"rate_limit"`)
}

func TestFail_PlainText(t *testing.T) {
	w := httptest.NewRecorder()
	respondTooLarge(w, httptest.NewRequest(http.MethodPost, "/register", nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), msgTooLarge)
}
