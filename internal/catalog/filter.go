package catalog

import (
	"net/url"
	"slices"
	"strings"

	"github.com/dukerupert/artesania/internal/domain"
)

// CategoryAll selects every category.
const CategoryAll = "all"

// SortOrder orders products by price.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter is the catalog page's filter state.
type Filter struct {
	Category string
	Search   string
	Sort     SortOrder
}

// DefaultFilter shows everything, cheapest first.
func DefaultFilter() Filter {
	return Filter{Category: CategoryAll, Sort: SortAsc}
}

// ParseFilter reads the filter from query parameters category, q and sort.
func ParseFilter(q url.Values) Filter {
	f := DefaultFilter()
	if c := strings.TrimSpace(q.Get("category")); c != "" {
		f.Category = c
	}
	f.Search = q.Get("q")
	if SortOrder(q.Get("sort")) == SortDesc {
		f.Sort = SortDesc
	}
	return f
}

// Values encodes the filter back into query parameters.
func (f Filter) Values() url.Values {
	v := url.Values{}
	v.Set("category", f.category())
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("q", f.Search)
	}
	v.Set("sort", string(f.sort()))
	return v
}

// Active reports whether a specific category is selected.
func (f Filter) Active() bool {
	return f.category() != CategoryAll
}

// Kind labels the filter for metrics.
func (f Filter) Kind() string {
	search := f.term() != ""
	switch {
	case f.Active() && search:
		return "both"
	case f.Active():
		return "category"
	case search:
		return "search"
	default:
		return "none"
	}
}

func (f Filter) category() string {
	if f.Category == "" {
		return CategoryAll
	}
	return f.Category
}

func (f Filter) sort() SortOrder {
	if f.Sort == SortDesc {
		return SortDesc
	}
	return SortAsc
}

func (f Filter) term() string {
	return strings.ToLower(strings.TrimSpace(f.Search))
}

// Apply derives the displayed list: category, then search, then a stable
// sort by price. The input slice is left untouched.
func Apply(products []domain.Product, f Filter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	term := f.term()
	for _, p := range products {
		if f.Active() && p.CategoryID != f.category() {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), term) {
			continue
		}
		out = append(out, p)
	}

	desc := f.sort() == SortDesc
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		if desc {
			return b.Price.Cmp(a.Price)
		}
		return a.Price.Cmp(b.Price)
	})
	return out
}
