package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dukerupert/artesania/internal/auth"
	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/backend/backendmock"
	"github.com/dukerupert/artesania/internal/cookie"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/handler/storefront"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/session"
)

var adminTemplates = fstest.MapFS{
	"layout.html":         {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
	"partials/flash.html": {Data: []byte(`{{define "flash"}}{{with .Flash}}{{.Message}}{{end}}{{end}}`)},
	"admin/layout.html":   {Data: []byte(`{{define "admin_base"}}<admin>{{template "flash" .}}{{template "content" .}}</admin>{{end}}`)},
	"admin/login.html": {Data: []byte(
		`{{define "content"}}email={{.Email}}{{with .Error}} error={{.}}{{end}}{{end}}`)},
	"admin/dashboard.html": {Data: []byte(
		`{{define "content"}}{{with .CatalogError}}catalog_error={{.}}{{else}}products={{.ProductCount}} categories={{.CategoryCount}}{{range .Categories}} [{{.Category.Name}}:{{.Products}}]{{end}}{{end}}{{end}}`)},
	"admin/forbidden.html": {Data: []byte(`{{define "content"}}{{.Message}}{{end}}`)},
}

type adminEnv struct {
	pages *storefront.Pages
	store *session.MemoryStore

	// planted is the id serve attached to the last request.
	planted string
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()
	renderer, err := handler.NewRenderer(adminTemplates, handler.TemplateFuncs("Bs"))
	require.NoError(t, err)

	store := session.NewMemoryStore(time.Hour)
	return &adminEnv{
		pages: &storefront.Pages{
			Renderer: renderer,
			Sessions: session.NewManager(store, cookie.NewConfig("", false), time.Hour),
			Events:   events.NoopPublisher{},
		},
		store: store,
	}
}

// serve runs h behind the session middleware with a session prepared by fn.
func (e *adminEnv) serve(t *testing.T, h http.Handler, r *http.Request, fn func(s *session.Session)) (*httptest.ResponseRecorder, *session.Session) {
	t.Helper()
	s := session.New(session.NewID())
	if fn != nil {
		fn(s)
	}
	require.NoError(t, e.store.Save(context.Background(), s))
	r.AddCookie(&http.Cookie{Name: cookie.SessionCookieName, Value: s.ID})

	e.planted = s.ID

	rec := httptest.NewRecorder()
	middleware.Sessions(e.pages.Sessions)(h).ServeHTTP(rec, r)

	id := s.ID
	if issued := sessionCookie(rec); issued != "" {
		id = issued
	}
	stored, err := e.store.Get(context.Background(), id)
	require.NoError(t, err)
	return rec, stored
}

func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

// assertRotated checks the planted id was retired in favour of a new one.
func (e *adminEnv) assertRotated(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	issued := sessionCookie(rec)
	require.NotEmpty(t, issued)
	assert.NotEqual(t, e.planted, issued)
	_, err := e.store.Get(context.Background(), e.planted)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func postForm(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func asRole(role domain.Role) func(s *session.Session) {
	return func(s *session.Session) {
		s.SignIn("tok", domain.User{ID: "1", Email: "root@example.com", Role: role}, time.Now().Add(time.Hour))
	}
}

func TestLoginHandler_HandleSubmit(t *testing.T) {
	creds := url.Values{"email": {"root@example.com"}, "password": {"secret"}}

	tests := []struct {
		name      string
		form      url.Values
		setupMock func(m *backendmock.MockAPI)
		wantCode  int
		wantBody  string
		wantRole  domain.Role
	}{
		{
			name: "administrator signs in",
			form: creds,
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().AdminLogin(gomock.Any(), "root@example.com", "secret").Return(&backend.AuthResult{
					Token: "admin-jwt",
					User:  domain.User{ID: "1", Email: "root@example.com", Role: "admin"},
				}, nil)
			},
			wantCode: http.StatusSeeOther,
			wantRole: "admin",
		},
		{
			name: "shopper account is refused",
			form: creds,
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().AdminLogin(gomock.Any(), gomock.Any(), gomock.Any()).Return(&backend.AuthResult{
					Token: "client-jwt",
					User:  domain.User{ID: "2", Role: domain.RoleClient},
				}, nil)
			},
			wantCode: http.StatusOK,
			wantBody: "error=" + MsgAdminRequired,
		},
		{
			name: "backend message is shown",
			form: creds,
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().AdminLogin(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, domain.Unauthorized("backend.admin_login", "Could not sign in as administrator."))
			},
			wantCode: http.StatusOK,
			wantBody: "error=Could not sign in as administrator.",
		},
		{
			name:     "missing password",
			form:     url.Values{"email": {"root@example.com"}},
			wantCode: http.StatusOK,
			wantBody: "email=root@example.com error=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := backendmock.NewMockAPI(gomock.NewController(t))
			if tt.setupMock != nil {
				tt.setupMock(api)
			}
			env := newAdminEnv(t)
			h := NewLoginHandler(env.pages, api, auth.NewValidator(nil), nil)

			rec, stored := env.serve(t, http.HandlerFunc(h.HandleSubmit), postForm("/admin/login", tt.form), nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			assert.Equal(t, tt.wantRole, stored.Role(), spew.Sdump(stored.User))
			if tt.wantRole != "" {
				assert.Equal(t, "/admin", rec.Header().Get("Location"))
				env.assertRotated(t, rec)
			} else {
				assert.Empty(t, sessionCookie(rec))
			}
		})
	}
}

func TestLoginHandler_ShowForm(t *testing.T) {
	env := newAdminEnv(t)
	h := NewLoginHandler(env.pages, nil, auth.NewValidator(nil), nil)

	rec, _ := env.serve(t, http.HandlerFunc(h.ShowForm), httptest.NewRequest(http.MethodGet, "/admin/login", nil), asRole("admin"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec, _ = env.serve(t, http.HandlerFunc(h.ShowForm), httptest.NewRequest(http.MethodGet, "/admin/login", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<admin>")
}

func TestLogoutHandler_HandleSubmit(t *testing.T) {
	api := backendmock.NewMockAPI(gomock.NewController(t))
	api.EXPECT().Logout(gomock.Any(), "tok").Return(nil)

	env := newAdminEnv(t)
	h := NewLogoutHandler(env.pages, api, nil)

	rec, stored := env.serve(t, http.HandlerFunc(h.HandleSubmit), postForm("/admin/logout", url.Values{}), asRole("admin"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	assert.False(t, stored.Authenticated())
	env.assertRotated(t, rec)
}

type stubCatalog struct {
	catalog *domain.Catalog
	err     error
}

func (s stubCatalog) Load(context.Context) (*domain.Catalog, error) { return s.catalog, s.err }

func (s stubCatalog) Product(_ context.Context, id string) (domain.Product, error) {
	return domain.Product{}, domain.NotFound("catalog.product", "product", id)
}

func TestAdminShell_RoleGate(t *testing.T) {
	svc := stubCatalog{catalog: &domain.Catalog{
		Categories: []domain.Category{{ID: "c1", Name: "Ceramics"}, {ID: "c2", Name: "Textiles"}},
		Products: []domain.Product{
			{ID: "1", CategoryID: "c1"},
			{ID: "2", CategoryID: "c1"},
			{ID: "3", CategoryID: "c2"},
			{ID: "4"},
		},
	}}

	tests := []struct {
		name         string
		prepare      func(s *session.Session)
		wantCode     int
		wantLocation string
		wantBody     string
	}{
		{"anonymous goes to admin login", nil, http.StatusSeeOther, "/admin/login", ""},
		{"shopper is forbidden", asRole(domain.RoleClient), http.StatusForbidden, "", MsgForbidden},
		{"administrator sees the dashboard", asRole("admin"), http.StatusOK, "",
			"products=4 categories=2 [Ceramics:2] [Textiles:1] [Uncategorized:1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newAdminEnv(t)
			gate := middleware.RequireElevated(NewForbiddenHandler(env.pages))
			h := gate(NewDashboardHandler(env.pages, svc))

			rec, _ := env.serve(t, h, httptest.NewRequest(http.MethodGet, "/admin", nil), tt.prepare)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDashboardHandler_CatalogDown(t *testing.T) {
	env := newAdminEnv(t)
	h := NewDashboardHandler(env.pages, stubCatalog{err: domain.Unavailable(errors.New("refused"), "backend.products")})

	rec, _ := env.serve(t, h, httptest.NewRequest(http.MethodGet, "/admin", nil), asRole("admin"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_error="+domain.MsgUnreachable)
}
