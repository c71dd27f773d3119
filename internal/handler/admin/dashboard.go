package admin

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/catalog"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/handler/storefront"
	"github.com/dukerupert/artesania/internal/middleware"
)

// MsgForbidden is shown to signed-in shoppers who open the admin shell.
const MsgForbidden = "You do not have permission to access this page."

// CategoryStat is one row of the dashboard's catalog table.
type CategoryStat struct {
	Category domain.Category
	Products int
}

// DashboardHandler handles the admin dashboard page
type DashboardHandler struct {
	pages   *storefront.Pages
	catalog catalog.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(pages *storefront.Pages, svc catalog.Service) *DashboardHandler {
	return &DashboardHandler{
		pages:   pages,
		catalog: svc,
	}
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := h.pages.BaseTemplateData(r)

	c, err := h.catalog.Load(r.Context())
	if err != nil {
		middleware.GetLogger(r.Context()).Warn("admin: catalog unavailable", "error", err)
		data["CatalogError"] = domain.ErrorMessage(err)
		h.pages.Renderer.RenderHTTP(w, "admin/dashboard", data)
		return
	}

	data["ProductCount"] = len(c.Products)
	data["CategoryCount"] = len(c.Categories)
	data["Categories"] = categoryStats(c)

	h.pages.Renderer.RenderHTTP(w, "admin/dashboard", data)
}

// categoryStats counts products per category in category order. Products
// without a known category are counted under an unnamed row at the end.
func categoryStats(c *domain.Catalog) []CategoryStat {
	counts := make(map[string]int, len(c.Categories))
	for _, p := range c.Products {
		counts[p.CategoryID]++
	}

	stats := make([]CategoryStat, 0, len(c.Categories)+1)
	for _, cat := range c.Categories {
		stats = append(stats, CategoryStat{Category: cat, Products: counts[cat.ID]})
		delete(counts, cat.ID)
	}

	other := 0
	for _, n := range counts {
		other += n
	}
	if other > 0 {
		stats = append(stats, CategoryStat{Category: domain.Category{Name: "Uncategorized"}, Products: other})
	}
	return stats
}

// ForbiddenHandler renders the "no permission" page with status 403.
type ForbiddenHandler struct {
	pages *storefront.Pages
}

func NewForbiddenHandler(pages *storefront.Pages) *ForbiddenHandler {
	return &ForbiddenHandler{pages: pages}
}

func (h *ForbiddenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := h.pages.BaseTemplateData(r)
	data["Message"] = MsgForbidden
	h.pages.Renderer.RenderStatus(w, http.StatusForbidden, "admin/forbidden", data)
}
