package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/orders"
)

// OrderItem is one line of an order request.
type OrderItem struct {
	ProductID string
	Quantity  int
}

// MarshalJSON sends numeric product ids as numbers.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	var id any = i.ProductID
	if n, err := strconv.ParseInt(i.ProductID, 10, 64); err == nil {
		id = n
	}
	return json.Marshal(struct {
		ProductID any `json:"product_id"`
		Quantity  int `json:"quantity"`
	}{id, i.Quantity})
}

type createOrderRequest struct {
	Items []OrderItem `json:"items"`
}

// CreateOrder places an order for items and returns the payment
// instructions generated for it.
func (c *Client) CreateOrder(ctx context.Context, token string, items []OrderItem) (*domain.OrderConfirmation, error) {
	doc, err := c.do(ctx, call{
		op:       "backend.create_order",
		method:   http.MethodPost,
		path:     "/api/orders",
		token:    token,
		body:     createOrderRequest{Items: items},
		fallback: func(int) string { return "Could not complete the purchase." },
	})
	if err != nil {
		return nil, err
	}
	return orders.NormalizeConfirmation(doc), nil
}

// ListOrders returns the raw order history of the token's account.
func (c *Client) ListOrders(ctx context.Context, token string) ([]any, error) {
	return c.list(ctx, call{
		op:       "backend.orders",
		method:   http.MethodGet,
		path:     "/api/orders",
		token:    token,
		fallback: func(int) string { return "Could not load your orders. Please try again." },
	})
}

// FetchOrder returns one raw order.
func (c *Client) FetchOrder(ctx context.Context, token, id string) (map[string]any, error) {
	return c.object(ctx, call{
		op:       "backend.order",
		method:   http.MethodGet,
		path:     "/api/orders/" + url.PathEscape(id),
		token:    token,
		fallback: func(int) string { return "Could not load the order. Please try again." },
	})
}
