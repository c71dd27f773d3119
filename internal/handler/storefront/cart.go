package storefront

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/catalog"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/events"
	"github.com/dukerupert/artesania/internal/handler"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/session"
	"github.com/dukerupert/artesania/internal/telemetry"
)

const (
	MsgCartEmpty         = "There are no products in the cart."
	MsgCheckoutFailed    = "Could not complete the purchase."
	MsgProductGone       = "That product is no longer available."
	MsgSignInForCheckout = "Sign in to finalize your purchase."
)

// CartHandler handles all cart-related storefront routes
type CartHandler struct {
	pages   *Pages
	catalog catalog.Service
	api     backend.API
	metrics *telemetry.BusinessMetrics
}

// NewCartHandler creates a new cart handler
func NewCartHandler(pages *Pages, svc catalog.Service, api backend.API, metrics *telemetry.BusinessMetrics) *CartHandler {
	return &CartHandler{
		pages:   pages,
		catalog: svc,
		api:     api,
		metrics: metrics,
	}
}

// cartData is shared by the cart page and its htmx partials.
func cartData(s *session.Session, data map[string]interface{}) map[string]interface{} {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Items"] = s.Cart.Items()
	data["Totals"] = s.Cart.Totals()
	data["CartCount"] = s.Cart.Totals().Quantity
	return data
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	data := h.pages.BaseTemplateData(r)
	h.pages.Render(w, r, "cart", cartData(currentSession(r), data))
}

// Add handles POST /cart/add
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID := strings.TrimSpace(r.PostFormValue("product_id"))
	if productID == "" {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "Choose a product to add."))
		return
	}

	product, err := h.catalog.Product(ctx, productID)
	if err != nil {
		msg := MsgCatalogUnavailable
		if domain.IsCode(err, domain.ENOTFOUND) {
			msg = MsgProductGone
		}
		logger(r).Warn("add to cart failed", "product_id", productID, "error", err)
		h.respond(w, r, session.FlashError, msg, returnPath(r, "/products"))
		return
	}

	s, err := h.pages.Sessions.Update(ctx, func(s *session.Session) error {
		s.Cart.Add(product)
		return nil
	})
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	h.metrics.AddedToCart(product.ID)
	line, _ := s.Cart.Find(product.ID)
	h.pages.Publish(ctx, events.CartItemAdded, map[string]any{
		"product_id": product.ID,
		"quantity":   line.Quantity,
	})

	h.respond(w, r, session.FlashSuccess, fmt.Sprintf("%s added to cart", product.Name), returnPath(r, "/products"))
}

// Update handles POST /cart/update. A quantity of zero or less removes the line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(r.PostFormValue("product_id"))
	quantity, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
	if productID == "" || err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update", "Invalid quantity"))
		return
	}

	action := "update_quantity"
	if quantity <= 0 {
		action = "remove"
	}
	h.mutate(w, r, action, productID, func(s *session.Session) {
		s.Cart.UpdateQuantity(productID, quantity)
	})
}

// Remove handles POST /cart/remove
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(r.PostFormValue("product_id"))
	if productID == "" {
		handler.ErrorResponse(w, r, domain.Invalid("cart.remove", "Choose a product to remove."))
		return
	}

	h.mutate(w, r, "remove", productID, func(s *session.Session) {
		s.Cart.Remove(productID)
	})
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, action, productID string, fn func(*session.Session)) {
	s, err := h.pages.Sessions.Update(r.Context(), func(s *session.Session) error {
		fn(s)
		return nil
	})
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	h.metrics.CartChanged(action)
	h.pages.Publish(r.Context(), events.CartUpdated, map[string]any{
		"action":     action,
		"product_id": productID,
	})

	if handler.IsHTMX(r) {
		h.pages.Renderer.RenderPartial(w, "storefront/cart", "cart_contents", cartData(s, map[string]interface{}{
			"CSRFToken": middleware.GetCSRFToken(r.Context()),
		}))
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Checkout handles POST /cart/checkout: it creates the order from the cart
// and sends the shopper to the checkout page with the payment instructions.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := currentSession(r)

	if !s.Authenticated() {
		h.pages.FlashRedirect(w, r, session.FlashInfo, MsgSignInForCheckout, "/login")
		return
	}
	if s.Cart.IsEmpty() {
		h.pages.FlashRedirect(w, r, session.FlashError, MsgCartEmpty, "/cart")
		return
	}

	lines := s.Cart.Items()
	items := make([]backend.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, backend.OrderItem{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	totals := s.Cart.Totals()

	confirmation, err := h.api.CreateOrder(ctx, s.Token, items)
	if err != nil {
		if domain.IsCode(err, domain.EUNAUTHORIZED) {
			h.pages.SignOutExpired(w, r)
			return
		}

		msg := domain.ErrorMessage(err)
		if msg == "" {
			msg = MsgCheckoutFailed
		}
		logger(r).Warn("order creation failed", "error", err, "code", domain.ErrorCode(err))
		h.metrics.OrderFailed(domain.ErrorCode(err))
		h.pages.Publish(ctx, events.OrderFailed, map[string]any{"code": domain.ErrorCode(err)})

		if _, uerr := h.pages.Sessions.Update(ctx, func(s *session.Session) error {
			s.Order = nil
			s.OrderError = msg
			s.SetFlash(session.FlashError, msg)
			return nil
		}); uerr != nil {
			handler.InternalErrorResponse(w, r, uerr)
			return
		}
		handler.Redirect(w, r, "/cart")
		return
	}

	if _, err := h.pages.Sessions.Update(ctx, func(s *session.Session) error {
		s.Order = confirmation
		s.OrderError = ""
		return nil
	}); err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	total, _ := totals.Price.Float64()
	h.metrics.OrderCreated(total, totals.Quantity)
	h.pages.Publish(ctx, events.OrderCreated, map[string]any{
		"order_id": confirmation.OrderID,
		"total":    totals.Price.StringFixed(2),
		"units":    totals.Quantity,
	})

	logger(r).Info("order created", "order_id", confirmation.OrderID, "units", totals.Quantity)
	handler.Redirect(w, r, "/checkout")
}

// respond answers a cart action: htmx requests get the cart badge and the
// notification swapped in place, everything else is redirected with a flash.
func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, kind, message, fallback string) {
	if handler.IsHTMX(r) {
		h.pages.Renderer.RenderPartial(w, "storefront/cart", "cart_added", map[string]interface{}{
			"CartCount": currentSession(r).Cart.Totals().Quantity,
			"Flash":     &session.Flash{Type: kind, Message: message},
		})
		return
	}
	h.pages.FlashRedirect(w, r, kind, message, fallback)
}

// returnPath reads the form's return field, accepting local paths only.
func returnPath(r *http.Request, fallback string) string {
	p := r.PostFormValue("return")
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	return p
}
