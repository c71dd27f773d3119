package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/backend/backendmock"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/session"
)

func TestCartHandler_Add(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		htmx         bool
		wantStatus   int
		wantLocation string
		wantBody     string
		wantFlash    string
		wantUnits    int
	}{
		{
			name:         "adds product and redirects back",
			form:         url.Values{"product_id": {"1"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/products",
			wantFlash:    "Clay mug added to cart",
			wantUnits:    1,
		},
		{
			name:         "honours local return path",
			form:         url.Values{"product_id": {"2"}, "return": {"/products?category=c2"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/products?category=c2",
			wantFlash:    "Alpaca scarf added to cart",
			wantUnits:    1,
		},
		{
			name:         "ignores external return path",
			form:         url.Values{"product_id": {"2"}, "return": {"//evil.example"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/products",
			wantFlash:    "Alpaca scarf added to cart",
			wantUnits:    1,
		},
		{
			name:         "unknown product flashes an error",
			form:         url.Values{"product_id": {"99"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/products",
			wantFlash:    MsgProductGone,
			wantUnits:    0,
		},
		{
			name:       "htmx swaps the badge",
			form:       url.Values{"product_id": {"1"}},
			htmx:       true,
			wantStatus: http.StatusOK,
			wantBody:   "badge=1 Clay mug added to cart",
			wantUnits:  1,
		},
		{
			name:       "missing product id is rejected",
			form:       url.Values{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := NewCartHandler(env.pages, catalogWith(sampleCatalog()), nil, nil)
			s := env.session(t, nil)

			req := request(http.MethodPost, "/cart/add", tt.form, s)
			if tt.htmx {
				htmx(req)
			}
			rec := httptest.NewRecorder()
			h.Add(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}

			stored := env.stored(t, s.ID)
			assert.Equal(t, tt.wantUnits, stored.Cart.Totals().Quantity)
			if tt.wantFlash != "" {
				require.NotNil(t, stored.Flash)
				assert.Equal(t, tt.wantFlash, stored.Flash.Message)
			}
		})
	}
}

func TestCartHandler_Add_IncrementsAndPublishes(t *testing.T) {
	env := newTestEnv(t)
	h := NewCartHandler(env.pages, catalogWith(sampleCatalog()), nil, nil)
	s := env.session(t, nil)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Add(rec, htmx(request(http.MethodPost, "/cart/add", url.Values{"product_id": {"3"}}, s)))
		require.Equal(t, http.StatusOK, rec.Code)
		s = env.stored(t, s.ID)
	}

	line, ok := s.Cart.Find("3")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)

	require.Len(t, env.events.events, 2)
	last := env.events.events[1]
	assert.Equal(t, events.CartItemAdded, last.Type)
	assert.Equal(t, s.ID, last.SessionID)
	assert.Equal(t, 2, last.Data["quantity"])
}

func TestCartHandler_Add_CatalogDown(t *testing.T) {
	env := newTestEnv(t)
	svc := &mockCatalog{
		productFunc: func(context.Context, string) (domain.Product, error) {
			return domain.Product{}, domain.Unavailable(errors.New("refused"), "backend.products")
		},
	}
	h := NewCartHandler(env.pages, svc, nil, nil)
	s := env.session(t, nil)

	rec := httptest.NewRecorder()
	h.Add(rec, htmx(request(http.MethodPost, "/cart/add", url.Values{"product_id": {"1"}}, s)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "badge=0 "+MsgCatalogUnavailable)
	assert.Empty(t, env.events.events)
}

func TestCartHandler_Update(t *testing.T) {
	catalog := sampleCatalog()
	mug, _ := catalog.Product("1")
	bowl, _ := catalog.Product("3")

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantMug    int
		wantLines  int
	}{
		{"sets quantity", url.Values{"product_id": {"1"}, "quantity": {"4"}}, http.StatusSeeOther, 4, 2},
		{"zero removes line", url.Values{"product_id": {"1"}, "quantity": {"0"}}, http.StatusSeeOther, 0, 1},
		{"negative removes line", url.Values{"product_id": {"1"}, "quantity": {"-2"}}, http.StatusSeeOther, 0, 1},
		{"unknown product is ignored", url.Values{"product_id": {"42"}, "quantity": {"3"}}, http.StatusSeeOther, 1, 2},
		{"non-numeric quantity is rejected", url.Values{"product_id": {"1"}, "quantity": {"many"}}, http.StatusBadRequest, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := NewCartHandler(env.pages, catalogWith(catalog), nil, nil)
			s := env.session(t, func(s *session.Session) {
				s.Cart.Add(mug)
				s.Cart.Add(bowl)
			})

			rec := httptest.NewRecorder()
			h.Update(rec, request(http.MethodPost, "/cart/update", tt.form, s))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/cart", rec.Header().Get("Location"))
			}

			stored := env.stored(t, s.ID)
			assert.Equal(t, tt.wantLines, stored.Cart.Len())
			line, _ := stored.Cart.Find("1")
			assert.Equal(t, tt.wantMug, line.Quantity)
		})
	}
}

func TestCartHandler_Remove_HTMX(t *testing.T) {
	catalog := sampleCatalog()
	mug, _ := catalog.Product("1")
	bowl, _ := catalog.Product("3")

	env := newTestEnv(t)
	h := NewCartHandler(env.pages, catalogWith(catalog), nil, nil)
	s := env.session(t, func(s *session.Session) {
		s.Cart.Add(mug)
		s.Cart.Add(bowl)
		s.Cart.Add(bowl)
	})

	rec := httptest.NewRecorder()
	h.Remove(rec, htmx(request(http.MethodPost, "/cart/remove", url.Values{"product_id": {"3"}}, s)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Clay mug x1")
	assert.NotContains(t, body, "Clay bowl")
	assert.Contains(t, body, "units=1")
	assert.Equal(t, []string{events.CartUpdated}, env.events.types())
}

func TestCartHandler_View(t *testing.T) {
	catalog := sampleCatalog()
	scarf, _ := catalog.Product("2")

	env := newTestEnv(t)
	h := NewCartHandler(env.pages, catalogWith(catalog), nil, nil)

	t.Run("empty cart", func(t *testing.T) {
		s := env.session(t, nil)
		rec := httptest.NewRecorder()
		h.View(rec, request(http.MethodGet, "/cart", nil, s))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "empty")
	})

	t.Run("shows lines and consumes flash", func(t *testing.T) {
		s := env.session(t, func(s *session.Session) {
			s.Cart.Add(scarf)
			s.SetFlash(session.FlashSuccess, "Alpaca scarf added to cart")
		})
		rec := httptest.NewRecorder()
		h.View(rec, request(http.MethodGet, "/cart", nil, s))

		body := rec.Body.String()
		assert.Contains(t, body, "Alpaca scarf x1")
		assert.Contains(t, body, `<div class="flash success">Alpaca scarf added to cart</div>`)
		assert.Contains(t, body, `<span id="cart">1</span>`)
		assert.Nil(t, env.stored(t, s.ID).Flash)
	})
}

func TestCartHandler_Checkout(t *testing.T) {
	catalog := sampleCatalog()
	mug, _ := catalog.Product("1")
	scarf, _ := catalog.Product("2")

	withCart := func(s *session.Session) {
		signedIn(s)
		s.Cart.Add(mug)
		s.Cart.Add(mug)
		s.Cart.Add(scarf)
	}

	tests := []struct {
		name         string
		prepare      func(s *session.Session)
		setupMock    func(m *backendmock.MockAPI)
		wantLocation string
		check        func(t *testing.T, s *session.Session, published []string)
	}{
		{
			name:         "anonymous shopper is sent to login",
			prepare:      func(s *session.Session) { s.Cart.Add(mug) },
			wantLocation: "/login",
			check: func(t *testing.T, s *session.Session, _ []string) {
				require.NotNil(t, s.Flash)
				assert.Equal(t, MsgSignInForCheckout, s.Flash.Message)
				assert.Equal(t, 1, s.Cart.Len())
			},
		},
		{
			name:         "empty cart stays on cart",
			prepare:      signedIn,
			wantLocation: "/cart",
			check: func(t *testing.T, s *session.Session, _ []string) {
				require.NotNil(t, s.Flash)
				assert.Equal(t, MsgCartEmpty, s.Flash.Message)
			},
		},
		{
			name:    "order created",
			prepare: withCart,
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().
					CreateOrder(gomock.Any(), "token-1", []backend.OrderItem{
						{ProductID: "1", Quantity: 2},
						{ProductID: "2", Quantity: 1},
					}).
					Return(&domain.OrderConfirmation{OrderID: "501", Total: "200"}, nil)
			},
			wantLocation: "/checkout",
			check: func(t *testing.T, s *session.Session, published []string) {
				require.NotNil(t, s.Order)
				assert.Equal(t, "501", s.Order.OrderID)
				assert.Empty(t, s.OrderError)
				assert.Equal(t, 3, s.Cart.Totals().Quantity)
				assert.Equal(t, []string{events.OrderCreated}, published)
			},
		},
		{
			name:    "order rejected",
			prepare: withCart,
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().
					CreateOrder(gomock.Any(), "token-1", gomock.Any()).
					Return(nil, domain.Conflict("backend.create_order", "Insufficient stock."))
			},
			wantLocation: "/cart",
			check: func(t *testing.T, s *session.Session, published []string) {
				assert.Nil(t, s.Order)
				assert.Equal(t, "Insufficient stock.", s.OrderError)
				require.NotNil(t, s.Flash)
				assert.Equal(t, session.FlashError, s.Flash.Type)
				assert.Equal(t, []string{events.OrderFailed}, published)
			},
		},
		{
			name:    "expired token signs out",
			prepare: withCart,
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().
					CreateOrder(gomock.Any(), "token-1", gomock.Any()).
					Return(nil, domain.Unauthorized("backend.create_order", "Token expired"))
			},
			wantLocation: "/login",
			check: func(t *testing.T, s *session.Session, _ []string) {
				assert.False(t, s.Authenticated())
				assert.True(t, s.Cart.IsEmpty())
				require.NotNil(t, s.Flash)
				assert.Equal(t, session.MsgExpired, s.Flash.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := backendmock.NewMockAPI(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(api)
			}

			env := newTestEnv(t)
			h := NewCartHandler(env.pages, catalogWith(catalog), api, nil)
			s := env.session(t, tt.prepare)

			rec := httptest.NewRecorder()
			h.Checkout(rec, request(http.MethodPost, "/cart/checkout", url.Values{}, s))

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			stored := env.stored
			if tt.wantLocation == "/login" {
				stored = func(t *testing.T, id string) *session.Session { return env.rotated(t, rec, id) }
			}
			tt.check(t, stored(t, s.ID), env.events.types())
		})
	}
}
