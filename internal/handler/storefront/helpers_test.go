package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/artesania/internal/cookie"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/session"
)

// testTemplates is a trimmed template tree exposing the same blocks as
// the real one.
var testTemplates = fstest.MapFS{
	"layout.html": {Data: []byte(
		`{{define "base"}}<html>{{template "flash" .}}<main>{{template "content" .}}</main><span id="cart">{{.CartCount}}</span></html>{{end}}`)},
	"partials/flash.html": {Data: []byte(
		`{{define "flash"}}{{with .Flash}}<div class="flash {{.Type}}">{{.Message}}</div>{{end}}{{end}}`)},
	"admin/layout.html": {Data: []byte(
		`{{define "admin_base"}}{{template "content" .}}{{end}}`)},
	"storefront/home.html": {Data: []byte(
		`{{define "content"}}{{range .Featured}}<p>{{.Name}}</p>{{end}}{{end}}` +
			`{{define "theme_toggle"}}dark={{.Dark}}{{end}}`)},
	"storefront/catalog.html": {Data: []byte(
		`{{define "content"}}query={{.Query}}{{end}}` +
			`{{define "catalog_results"}}{{if .Error}}<p class="error">{{.Error}}</p>{{else if .Empty}}{{.EmptyMessage}}{{else}}count={{.Count}}{{range .Products}}<p>{{.Name}}</p>{{end}}{{end}}{{end}}`)},
	"storefront/cart.html": {Data: []byte(
		`{{define "content"}}{{template "cart_contents" .}}{{end}}` +
			`{{define "cart_contents"}}{{range .Items}}<li>{{.Product.Name}} x{{.Quantity}}</li>{{else}}empty{{end}}units={{.Totals.Quantity}}{{end}}` +
			`{{define "cart_added"}}badge={{.CartCount}} {{with .Flash}}{{.Message}}{{end}}{{end}}`)},
	"storefront/checkout.html": {Data: []byte(
		`{{define "content"}}{{if .SignInRequired}}{{.Message}}{{else}}{{with .Summary}}lines={{len .Lines}}{{if .HasOrder}} order={{.Order.OrderID}}{{end}}{{end}} profile_error={{.ProfileError}}{{end}}{{end}}`)},
	"storefront/login.html": {Data: []byte(
		`{{define "content"}}<form>{{.Email}}</form>{{with .Error}}<p class="error">{{.}}</p>{{end}}{{end}}`)},
	"storefront/register.html": {Data: []byte(
		`{{define "content"}}{{with .Error}}<p class="error">{{.}}</p>{{end}}{{range $k, $v := .Errors}}<p>{{$k}}: {{$v}}</p>{{end}}{{end}}` +
			`{{define "password_strength"}}strength={{.Label}}{{end}}`)},
	"storefront/profile.html": {Data: []byte(
		`{{define "content"}}{{template "profile_panel" .}}{{end}}` +
			`{{define "profile_panel"}}editing={{.Editing}}{{with .Profile}} name={{.FirstName}}{{end}}{{with .LoadError}} load_error={{.}}{{end}}{{with .FormError}} form_error={{.}}{{end}}{{end}}`)},
	"storefront/orders.html": {Data: []byte(
		`{{define "content"}}{{with .Error}}<p class="error">{{.}}</p>{{end}}{{range .Orders}}<li>{{.ID}}</li>{{else}}{{.EmptyMessage}}{{end}}{{end}}`)},
	"storefront/order.html": {Data: []byte(
		`{{define "content"}}{{with .Error}}<p class="error">{{.}}</p>{{end}}{{with .Order}}order={{.ID}} details={{len .Details}}{{end}}{{end}}`)},
}

type testEnv struct {
	pages    *Pages
	sessions *session.Manager
	store    *session.MemoryStore
	events   *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := handler.NewRenderer(testTemplates, handler.TemplateFuncs("Bs"))
	require.NoError(t, err)

	store := session.NewMemoryStore(time.Hour)
	manager := session.NewManager(store, cookie.NewConfig("", false), time.Hour)
	publisher := &recordingPublisher{}

	return &testEnv{
		pages: &Pages{
			Renderer:  renderer,
			Sessions:  manager,
			Events:    publisher,
			StoreName: "Artesania",
		},
		sessions: manager,
		store:    store,
		events:   publisher,
	}
}

// session stores a new session, lets fn shape it and returns it.
func (e *testEnv) session(t *testing.T, fn func(s *session.Session)) *session.Session {
	t.Helper()
	s := session.New(session.NewID())
	if fn != nil {
		fn(s)
	}
	require.NoError(t, e.store.Save(context.Background(), s))
	return s
}

// stored reads the persisted copy of a session.
func (e *testEnv) stored(t *testing.T, id string) *session.Session {
	t.Helper()
	s, err := e.store.Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

// rotated asserts the response moved the visitor off oldID and returns the
// session stored under the new cookie value.
func (e *testEnv) rotated(t *testing.T, rec *httptest.ResponseRecorder, oldID string) *session.Session {
	t.Helper()
	var newID string
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.SessionCookieName {
			newID = c.Value
		}
	}
	require.NotEmpty(t, newID, "no session cookie set")
	require.NotEqual(t, oldID, newID)

	_, err := e.store.Get(context.Background(), oldID)
	require.ErrorIs(t, err, session.ErrNotFound)
	return e.stored(t, newID)
}

func signedIn(s *session.Session) {
	s.SignIn("token-1", domain.User{ID: "7", Email: "ana@example.com", FirstName: "Ana", Role: domain.RoleClient}, time.Time{})
}

// request builds a request carrying a copy of s in its context. A non-nil
// form makes it a urlencoded POST.
func request(method, target string, form url.Values, s *session.Session) *http.Request {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if s != nil {
		c := *s
		r = r.WithContext(session.NewContext(r.Context(), &c))
	}
	return r
}

func htmx(r *http.Request) *http.Request {
	r.Header.Set("HX-Request", "true")
	return r
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// mockCatalog implements catalog.Service for testing
type mockCatalog struct {
	loadFunc    func(ctx context.Context) (*domain.Catalog, error)
	productFunc func(ctx context.Context, id string) (domain.Product, error)
}

func (m *mockCatalog) Load(ctx context.Context) (*domain.Catalog, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return &domain.Catalog{}, nil
}

func (m *mockCatalog) Product(ctx context.Context, id string) (domain.Product, error) {
	if m.productFunc != nil {
		return m.productFunc(ctx, id)
	}
	return domain.Product{}, domain.NotFound("catalog.product", "product", id)
}

func sampleCatalog() *domain.Catalog {
	return &domain.Catalog{
		Categories: []domain.Category{{ID: "c1", Name: "Ceramics"}, {ID: "c2", Name: "Textiles"}},
		Products: []domain.Product{
			{ID: "1", Name: "Clay mug", Price: decimal.NewFromInt(40), CategoryID: "c1", CategoryName: "Ceramics"},
			{ID: "2", Name: "Alpaca scarf", Price: decimal.NewFromInt(120), CategoryID: "c2", CategoryName: "Textiles"},
			{ID: "3", Name: "Clay bowl", Price: decimal.NewFromInt(55), CategoryID: "c1", CategoryName: "Ceramics"},
			{ID: "4", Name: "Woven bag", Price: decimal.NewFromInt(80), CategoryID: "c2", CategoryName: "Textiles"},
		},
	}
}

func catalogWith(c *domain.Catalog) *mockCatalog {
	return &mockCatalog{
		loadFunc: func(context.Context) (*domain.Catalog, error) { return c, nil },
		productFunc: func(_ context.Context, id string) (domain.Product, error) {
			if p, ok := c.Product(id); ok {
				return p, nil
			}
			return domain.Product{}, domain.NotFound("catalog.product", "product", id)
		},
	}
}
