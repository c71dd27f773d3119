// Package checkout projects the cart, the account profile and the last
// order confirmation into the read-only checkout view.
package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/dukerupert/artesania/internal/cart"
	"github.com/dukerupert/artesania/internal/domain"
)

// Line is one cart line as shown on the checkout page.
type Line struct {
	ProductID    string
	Name         string
	CategoryName string
	Quantity     int
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
}

// Summary is everything the checkout page renders.
type Summary struct {
	Lines        []Line
	Totals       domain.Totals
	Profile      *domain.UserProfile
	Order        *domain.OrderConfirmation
	Instructions *domain.PaymentInstructions
	OrderError   string
	HasOrder     bool
}

// HasItems reports whether the cart had any lines.
func (s Summary) HasItems() bool {
	return len(s.Lines) > 0
}

// AwaitingOrder reports whether the page should prompt for generating an
// order from the cart.
func (s Summary) AwaitingOrder() bool {
	return !s.HasOrder && s.OrderError == ""
}

// Build derives the summary. It does not modify its inputs and performs no
// computation on the payment instructions.
func Build(c *cart.Cart, profile *domain.UserProfile, order *domain.OrderConfirmation, orderErr string) Summary {
	s := Summary{
		Totals:     domain.Totals{Price: decimal.Zero},
		Profile:    profile,
		Order:      order,
		OrderError: orderErr,
		HasOrder:   order != nil,
	}
	if order != nil {
		s.Instructions = order.Instructions
	}
	if c == nil {
		return s
	}

	items := c.Items()
	s.Lines = make([]Line, 0, len(items))
	for _, l := range items {
		s.Lines = append(s.Lines, Line{
			ProductID:    l.Product.ID,
			Name:         l.Product.Name,
			CategoryName: l.Product.CategoryName,
			Quantity:     l.Quantity,
			UnitPrice:    l.Product.Price,
			Subtotal:     l.Subtotal(),
		})
	}
	s.Totals = c.Totals()
	return s
}
