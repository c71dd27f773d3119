package backend

import (
	"context"
	"net/http"

	"github.com/dukerupert/artesania/internal/payload"
)

const msgCatalogUnavailable = "Could not load products. Please try again."

// ListProducts returns the raw product records.
func (c *Client) ListProducts(ctx context.Context) ([]any, error) {
	return c.list(ctx, call{
		op:       "backend.products",
		method:   http.MethodGet,
		path:     "/api/products",
		fallback: func(int) string { return msgCatalogUnavailable },
	})
}

// ListCategories returns the raw category records.
func (c *Client) ListCategories(ctx context.Context) ([]any, error) {
	return c.list(ctx, call{
		op:       "backend.categories",
		method:   http.MethodGet,
		path:     "/api/categories",
		fallback: func(int) string { return msgCatalogUnavailable },
	})
}

// list performs a request whose response is an array, bare or wrapped in
// a "data" envelope. Anything else yields an empty list.
func (c *Client) list(ctx context.Context, cl call) ([]any, error) {
	doc, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	list := payload.List(payload.Unwrap(doc, "data"))
	if list == nil {
		list = []any{}
	}
	return list, nil
}

// object performs a request whose response is a JSON object, unwrapping a
// "data" envelope when it holds an object. Anything else yields an empty
// object.
func (c *Client) object(ctx context.Context, cl call) (map[string]any, error) {
	doc, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	if obj, ok := payload.Object(payload.Unwrap(doc, "data")); ok {
		return obj, nil
	}
	if obj, ok := payload.Object(doc); ok {
		return obj, nil
	}
	return map[string]any{}, nil
}
