package storefront

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/backend"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/orders"
)

const (
	MsgNoOrders       = "You have no orders yet."
	MsgNoOrderDetails = "No products recorded for this order."
	MsgOrderNotFound  = "We could not find that order."
)

// OrdersHandler serves the order history.
type OrdersHandler struct {
	pages *Pages
	api   backend.API
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(pages *Pages, api backend.API) *OrdersHandler {
	return &OrdersHandler{pages: pages, api: api}
}

// List handles GET /orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)

	raw, err := h.api.ListOrders(r.Context(), s.Token)
	if domain.IsCode(err, domain.EUNAUTHORIZED) {
		h.pages.SignOutExpired(w, r)
		return
	}

	data := h.pages.BaseTemplateData(r)
	data["EmptyMessage"] = MsgNoOrders
	if err != nil {
		logger(r).Warn("order history unavailable", "error", err, "code", domain.ErrorCode(err))
		data["Error"] = domain.ErrorMessage(err)
	} else {
		data["Orders"] = orders.NormalizeList(raw)
	}

	h.pages.Render(w, r, "orders", data)
}

// Detail handles GET /orders/{id}
func (h *OrdersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	s := currentSession(r)
	id := r.PathValue("id")

	raw, err := h.api.FetchOrder(r.Context(), s.Token, id)
	if domain.IsCode(err, domain.EUNAUTHORIZED) {
		h.pages.SignOutExpired(w, r)
		return
	}

	data := h.pages.BaseTemplateData(r)
	data["EmptyMessage"] = MsgNoOrderDetails

	if err != nil {
		status := http.StatusOK
		message := domain.ErrorMessage(err)
		if domain.IsCode(err, domain.ENOTFOUND) {
			status = http.StatusNotFound
			message = MsgOrderNotFound
		} else {
			logger(r).Warn("order unavailable", "order_id", id, "error", err)
		}
		data["Error"] = message
		h.pages.Renderer.RenderStatus(w, status, "storefront/order", data)
		return
	}

	order := orders.Normalize(raw)
	if order.ID == "" {
		order.ID = id
	}
	data["Order"] = order

	h.pages.Render(w, r, "order", data)
}
