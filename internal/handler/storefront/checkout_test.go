package storefront

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/dukerupert/artesania/internal/backend/backendmock"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/profile"
	"github.com/dukerupert/artesania/internal/session"
)

func TestCheckoutHandler_Page(t *testing.T) {
	catalog := sampleCatalog()
	mug, _ := catalog.Product("1")
	bag, _ := catalog.Product("4")

	tests := []struct {
		name      string
		prepare   func(s *session.Session)
		setupMock func(m *backendmock.MockAPI)
		want      string
		wantCode  int
		wantLoc   string
	}{
		{
			name:     "anonymous shopper is asked to sign in",
			prepare:  func(s *session.Session) { s.Cart.Add(mug) },
			want:     MsgSignInToCheckout,
			wantCode: http.StatusOK,
		},
		{
			name: "summary with confirmed order",
			prepare: func(s *session.Session) {
				withProfile(s)
				s.Cart.Add(mug)
				s.Cart.Add(bag)
				s.Order = &domain.OrderConfirmation{OrderID: "501", Total: "120"}
			},
			want:     "lines=2 order=501",
			wantCode: http.StatusOK,
		},
		{
			name: "profile failure is reported",
			prepare: func(s *session.Session) {
				signedIn(s)
				s.Cart.Add(mug)
			},
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().FetchProfile(gomock.Any(), "token-1").
					Return(nil, domain.Unavailable(errors.New("refused"), "backend.profile"))
			},
			want:     "lines=1 profile_error=" + MsgCheckoutProfileFailed,
			wantCode: http.StatusOK,
		},
		{
			name:    "expired token signs out",
			prepare: signedIn,
			setupMock: func(m *backendmock.MockAPI) {
				m.EXPECT().FetchProfile(gomock.Any(), gomock.Any()).
					Return(nil, domain.Unauthorized("backend.profile", "Token expired"))
			},
			wantCode: http.StatusSeeOther,
			wantLoc:  "/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := backendmock.NewMockAPI(gomock.NewController(t))
			if tt.setupMock != nil {
				tt.setupMock(api)
			}

			env := newTestEnv(t)
			loader := NewProfileLoader(api, env.sessions, profile.Normalizer{})
			h := NewCheckoutHandler(env.pages, loader, nil, "https://pay.example/artesania")

			rec := httptest.NewRecorder()
			h.Page(rec, request(http.MethodGet, "/checkout", nil, env.session(t, tt.prepare)))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.want != "" {
				assert.Contains(t, rec.Body.String(), tt.want)
			}
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}
