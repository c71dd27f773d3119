package storefront

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/catalog"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/telemetry"
)

const (
	MsgCatalogUnavailable = "Could not load products. Please try again."
	MsgNoMatches          = "No products match the selected filters."

	featuredCount = 3
)

// CatalogHandler serves the landing page and the product catalog.
type CatalogHandler struct {
	pages   *Pages
	catalog catalog.Service
	metrics *telemetry.BusinessMetrics
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(pages *Pages, svc catalog.Service, metrics *telemetry.BusinessMetrics) *CatalogHandler {
	return &CatalogHandler{
		pages:   pages,
		catalog: svc,
		metrics: metrics,
	}
}

// Home handles GET /
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := h.pages.BaseTemplateData(r)

	// The landing page renders without products when the catalog is down.
	featured := make([]domain.Product, 0, featuredCount)
	if c, err := h.catalog.Load(r.Context()); err == nil {
		for i, p := range c.Products {
			if i >= featuredCount {
				break
			}
			featured = append(featured, p)
		}
	} else {
		logger(r).Warn("featured products unavailable", "error", err)
	}
	data["Featured"] = featured

	h.pages.Render(w, r, "home", data)
}

// Page handles GET /products. The results load separately so the page
// can show its loading state first.
func (h *CatalogHandler) Page(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ParseFilter(r.URL.Query())

	data := h.pages.BaseTemplateData(r)
	data["Filter"] = filter
	data["Query"] = filter.Values().Encode()

	h.pages.Render(w, r, "catalog", data)
}

// CatalogResults is the data for the catalog_results partial.
type CatalogResults struct {
	Filter     catalog.Filter
	Categories []domain.Category
	Products   []domain.Product
	Error      string
	CSRFToken  string
}

// EmptyMessage is shown when filtering leaves nothing.
func (c CatalogResults) EmptyMessage() string {
	return MsgNoMatches
}

// Count is the number of products shown.
func (c CatalogResults) Count() int {
	return len(c.Products)
}

// Empty reports whether a loaded catalog has nothing to show.
func (c CatalogResults) Empty() bool {
	return c.Error == "" && len(c.Products) == 0
}

// Results handles GET /products/results (htmx partial)
func (h *CatalogHandler) Results(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ParseFilter(r.URL.Query())
	data := CatalogResults{
		Filter:    filter,
		CSRFToken: middleware.GetCSRFToken(r.Context()),
	}

	c, err := h.catalog.Load(r.Context())
	if err != nil {
		logger(r).Warn("catalog load failed", "error", err, "code", domain.ErrorCode(err))
		h.metrics.CatalogFailed()
		data.Error = MsgCatalogUnavailable
	} else {
		data.Categories = c.Categories
		data.Products = catalog.Apply(c.Products, filter)
		h.metrics.CatalogViewed(filter.Kind())
	}

	// htmx only swaps 2xx responses, so failures still answer 200.
	h.pages.Renderer.RenderPartial(w, "storefront/catalog", "catalog_results", data)
}
