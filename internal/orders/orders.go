// Package orders normalizes order-history payloads and formats them for
// display. Orders are read-only here.
package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/payload"
)

// DefaultProductImage is shown for order lines without a product image.
const DefaultProductImage = "https://via.placeholder.com/60"

// ParseAmount reads a monetary value. Absent values are AmountMissing;
// values that are not numbers keep their text as AmountInvalid.
func ParseAmount(v any) domain.Amount {
	if v == nil {
		return domain.Amount{State: domain.AmountMissing}
	}
	raw := payload.Text(v)
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return domain.Amount{Raw: raw, State: domain.AmountInvalid}
	}
	d, ok := payload.Decimal(v)
	if !ok {
		return domain.Amount{Raw: raw, State: domain.AmountInvalid}
	}
	return domain.Amount{Value: d, Raw: raw, State: domain.AmountValid}
}

// Normalize maps one raw order record, tolerating missing fields.
func Normalize(raw map[string]any) domain.Order {
	o := domain.Order{
		ID:             payload.Text(raw["id"]),
		CreatedAt:      payload.Text(raw["created_at"]),
		Total:          ParseAmount(raw["total_amount"]),
		Status:         payload.FirstText(raw, "state", "status"),
		GlobalDiscount: ParseAmount(raw["global_discount"]),
	}
	for _, d := range payload.Objects(raw["details"]) {
		o.Details = append(o.Details, normalizeDetail(d))
	}
	return o
}

// NormalizeList maps a batch, skipping entries that are not objects.
func NormalizeList(raw []any) []domain.Order {
	objs := payload.Objects(raw)
	out := make([]domain.Order, 0, len(objs))
	for _, obj := range objs {
		out = append(out, Normalize(obj))
	}
	return out
}

func normalizeDetail(raw map[string]any) domain.OrderDetail {
	product, _ := payload.Object(raw["product"])
	d := domain.OrderDetail{
		ID:           payload.Text(raw["id"]),
		ProductID:    payload.Text(raw["product_id"]),
		ProductName:  payload.FirstText(product, "name", "nombre"),
		ProductImage: payload.FirstText(product, "image", "image_url", "imagen_url"),
		ProductPrice: ParseAmount(product["price"]),
		Subtotal:     ParseAmount(raw["subtotal_price"]),
		UnitDiscount: ParseAmount(raw["unit_discount"]),
	}
	if q, ok := payload.Int(raw["quantity"]); ok && q > 0 {
		d.Quantity = q
	}
	if d.ProductName == "" {
		d.ProductName = "Product #" + d.ProductID
	}
	if d.ProductImage == "" {
		d.ProductImage = DefaultProductImage
	}
	return d
}

// UnitPrice is the product's price when the order carries it, otherwise the
// subtotal divided by the quantity. The result is missing when neither can
// be derived.
func UnitPrice(d domain.OrderDetail) domain.Amount {
	if d.ProductPrice.State != domain.AmountMissing {
		return d.ProductPrice
	}
	if d.Quantity > 0 && d.Subtotal.Valid() {
		v := d.Subtotal.Value.Div(decimal.NewFromInt(int64(d.Quantity)))
		return domain.Amount{Value: v, Raw: v.String(), State: domain.AmountValid}
	}
	return domain.Amount{State: domain.AmountMissing}
}

// Present reports whether the backend sent a value at all, zero included.
func Present(a domain.Amount) bool {
	return a.State != domain.AmountMissing
}

// HasDiscount reports whether a discount amount is worth showing.
func HasDiscount(a domain.Amount) bool {
	switch a.State {
	case domain.AmountValid:
		return !a.Value.IsZero()
	case domain.AmountInvalid:
		return a.Raw != ""
	default:
		return false
	}
}

// NormalizeConfirmation maps the order-creation response. Payment
// instructions are copied as text without interpretation.
func NormalizeConfirmation(v any) *domain.OrderConfirmation {
	raw, ok := payload.Object(payload.Unwrap(v, "data"))
	if !ok {
		return &domain.OrderConfirmation{}
	}

	c := &domain.OrderConfirmation{
		OrderID: payload.FirstText(raw, "order_id", "id"),
		Total:   payload.FirstText(raw, "total", "total_amount"),
	}
	if order, ok := payload.Object(raw["order"]); ok {
		if c.OrderID == "" {
			c.OrderID = payload.Text(order["id"])
		}
		if c.Total == "" {
			c.Total = payload.Text(order["total_amount"])
		}
	}
	if pi, ok := payload.Object(raw["payment_instructions"]); ok {
		c.Instructions = &domain.PaymentInstructions{
			Asset:   payload.Text(pi["asset"]),
			Amount:  payload.Text(pi["usdt_amount"]),
			Network: payload.Text(pi["network"]),
			Address: payload.Text(pi["usdt_address"]),
			Note:    payload.Text(pi["note"]),
		}
	}
	return c
}
