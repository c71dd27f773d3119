package domain

import "github.com/shopspring/decimal"

// LineItem is one product in the cart with its quantity.
// A stored line always has Quantity >= 1.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price * quantity, treating negative inputs as zero.
func (l LineItem) Subtotal() decimal.Decimal {
	qty := l.Quantity
	if qty < 0 {
		qty = 0
	}
	price := l.Product.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Totals aggregates the cart.
type Totals struct {
	Quantity int
	Price    decimal.Decimal
}
