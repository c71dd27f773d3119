package storefront

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/checkout"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/telemetry"
)

const (
	MsgSignInToCheckout      = "You must sign in to finalize your purchase."
	MsgCheckoutProfileFailed = "Could not load profile data."
)

// CheckoutHandler serves the checkout summary.
type CheckoutHandler struct {
	pages       *Pages
	loader      *ProfileLoader
	metrics     *telemetry.BusinessMetrics
	paymentLink string
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(pages *Pages, loader *ProfileLoader, metrics *telemetry.BusinessMetrics, paymentLink string) *CheckoutHandler {
	return &CheckoutHandler{
		pages:       pages,
		loader:      loader,
		metrics:     metrics,
		paymentLink: paymentLink,
	}
}

// Page handles GET /checkout
func (h *CheckoutHandler) Page(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)
	h.metrics.CheckoutViewed(s.Authenticated())

	if !s.Authenticated() {
		data := h.pages.BaseTemplateData(r)
		data["SignInRequired"] = true
		data["Message"] = MsgSignInToCheckout
		h.pages.Render(w, r, "checkout", data)
		return
	}

	if err := h.loader.Ensure(r.Context()); err != nil {
		if domain.IsCode(err, domain.EUNAUTHORIZED) {
			h.pages.SignOutExpired(w, r)
			return
		}
		handler.InternalErrorResponse(w, r, err)
		return
	}

	var p *domain.UserProfile
	if committed, ok := s.Profile.Committed(); ok {
		p = &committed
	}

	data := h.pages.BaseTemplateData(r)
	data["Summary"] = checkout.Build(s.Cart, p, s.Order, s.OrderError)
	data["ProfileLoading"] = s.ProfileFetch.Loading()
	data["ProfileError"] = ""
	if s.ProfileFetch.Failed() {
		data["ProfileError"] = MsgCheckoutProfileFailed
	}
	data["PaymentLink"] = h.paymentLink

	h.pages.Render(w, r, "checkout", data)
}
