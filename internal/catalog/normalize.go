// Package catalog turns marketplace catalog payloads into canonical products
// and categories, and derives the filtered, sorted product list shown on the
// catalog page.
package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/payload"
)

// DefaultPlaceholderImage is used for products without any image field.
const DefaultPlaceholderImage = "https://via.placeholder.com/300x300.png?text=Product"

// Normalizer maps raw marketplace records onto domain types. The marketplace
// mixes localized and English keys; those aliases never leave this file.
type Normalizer struct {
	PlaceholderImage string
}

func (n Normalizer) placeholder() string {
	if n.PlaceholderImage != "" {
		return n.PlaceholderImage
	}
	return DefaultPlaceholderImage
}

// Product normalizes one raw product record. It never fails: missing or
// malformed fields fall back to defaults.
func (n Normalizer) Product(raw map[string]any) domain.Product {
	id := payload.ID(raw["id"])

	p := domain.Product{
		ID:          id,
		Name:        payload.FirstText(raw, "nombre", "name"),
		Description: payload.FirstText(raw, "descripcion", "description"),
		Price:       price(raw),
		Image:       payload.FirstText(raw, "imagen_url", "image_url", "image"),
	}
	if p.Name == "" {
		p.Name = "Product " + id
	}
	if p.Description == "" {
		p.Description = "No description available."
	}
	if p.Image == "" {
		p.Image = n.placeholder()
	}

	nested, _ := payload.Object(raw["category"])
	if v, ok := payload.FirstPresent(raw, "category_id"); ok {
		p.CategoryID = payload.ID(v)
	} else if v, ok := payload.FirstPresent(nested, "id"); ok {
		p.CategoryID = payload.ID(v)
	}

	p.CategoryName = payload.FirstText(nested, "nombre", "name")
	if p.CategoryName == "" {
		p.CategoryName = payload.FirstText(raw, "category_name")
	}

	return p
}

// Category normalizes one raw category record.
func (n Normalizer) Category(raw map[string]any) domain.Category {
	id := payload.ID(raw["id"])
	name := payload.FirstText(raw, "nombre", "name")
	if name == "" {
		name = "Category " + id
	}
	return domain.Category{ID: id, Name: name}
}

// Products normalizes a batch, skipping entries that are not JSON objects.
func (n Normalizer) Products(raw []any) []domain.Product {
	objs := payload.Objects(raw)
	out := make([]domain.Product, 0, len(objs))
	for _, obj := range objs {
		out = append(out, n.Product(obj))
	}
	return out
}

// Categories normalizes a batch, skipping entries that are not JSON objects.
func (n Normalizer) Categories(raw []any) []domain.Category {
	objs := payload.Objects(raw)
	out := make([]domain.Category, 0, len(objs))
	for _, obj := range objs {
		out = append(out, n.Category(obj))
	}
	return out
}

// NormalizeProduct normalizes with the default placeholder image.
func NormalizeProduct(raw map[string]any) domain.Product {
	return Normalizer{}.Product(raw)
}

// NormalizeCategory normalizes with default settings.
func NormalizeCategory(raw map[string]any) domain.Category {
	return Normalizer{}.Category(raw)
}

// price coerces the first present price alias. Unparseable or negative
// values become zero.
func price(raw map[string]any) decimal.Decimal {
	v, ok := payload.FirstPresent(raw, "precio", "price")
	if !ok {
		return decimal.Zero
	}
	d, ok := payload.Decimal(v)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
