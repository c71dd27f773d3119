package domain

import "github.com/shopspring/decimal"

// Product is the canonical catalog item shown in the storefront.
// Every field is populated by the catalog normalizer; missing source data
// degrades to defaults rather than to zero-value surprises.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	CategoryID   string          `json:"categoryId,omitempty"`
	CategoryName string          `json:"categoryName,omitempty"`
}

// Category is a product grouping used by the catalog filter.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is a normalized snapshot of the marketplace's products and categories.
type Catalog struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
