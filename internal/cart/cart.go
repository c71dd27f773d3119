// Package cart holds the visitor's shopping cart: an ordered list of line
// items, at most one per product, each with a quantity of at least one.
package cart

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/artesania/internal/domain"
)

// Cart is not safe for concurrent use; the session store serializes access.
type Cart struct {
	items []domain.LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID string) int {
	return slices.IndexFunc(c.items, func(l domain.LineItem) bool {
		return l.Product.ID == productID
	})
}

// Add puts one unit of p in the cart. An existing line is incremented and
// keeps its position; a new line is appended.
func (c *Cart) Add(p domain.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, domain.LineItem{Product: p, Quantity: 1})
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.items = slices.Delete(c.items, i, i+1)
		return
	}
	c.items[i].Quantity = qty
}

// Remove drops the line for productID, if any.
func (c *Cart) Remove(productID string) {
	c.items = slices.DeleteFunc(c.items, func(l domain.LineItem) bool {
		return l.Product.ID == productID
	})
}

// Find returns the line for productID.
func (c *Cart) Find(productID string) (domain.LineItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.items[i], true
	}
	return domain.LineItem{}, false
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []domain.LineItem {
	return slices.Clone(c.items)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Clear() {
	c.items = nil
}

// Totals sums quantities and line subtotals.
func (c *Cart) Totals() domain.Totals {
	t := domain.Totals{Price: decimal.Zero}
	for _, l := range c.items {
		if l.Quantity > 0 {
			t.Quantity += l.Quantity
		}
		t.Price = t.Price.Add(l.Subtotal())
	}
	return t
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []domain.LineItem{}
	}
	return json.Marshal(items)
}

// UnmarshalJSON restores a stored cart, dropping lines that would break the
// cart's invariants.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	c.items = c.items[:0]
	for _, l := range items {
		if l.Quantity <= 0 || l.Product.ID == "" || c.index(l.Product.ID) >= 0 {
			continue
		}
		if l.Product.Price.IsNegative() {
			l.Product.Price = decimal.Zero
		}
		c.items = append(c.items, l)
	}
	return nil
}
