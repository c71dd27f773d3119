package routes

import (
	"net/http"

	"github.com/dukerupert/artesania/internal/handler/admin"
	"github.com/dukerupert/artesania/internal/handler/storefront"
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/router"
	"github.com/dukerupert/artesania/internal/session"
)

// StorefrontDeps contains dependencies for storefront routes
type StorefrontDeps struct {
	// Catalog (home, catalog page, htmx results)
	CatalogHandler *storefront.CatalogHandler

	// Cart (view, add, update, remove, place order)
	CartHandler *storefront.CartHandler

	// Checkout (payment handoff)
	CheckoutHandler *storefront.CheckoutHandler

	// Auth (login, register, logout)
	AuthHandler *storefront.AuthHandler

	// Account
	ProfileHandler *storefront.ProfileHandler
	OrdersHandler  *storefront.OrdersHandler

	ThemeHandler *storefront.ThemeHandler

	// Sessions guards the account routes.
	Sessions *session.Manager

	// AuthLimiter throttles credential submissions. Optional.
	AuthLimiter *middleware.RateLimiter

	// NotFound renders unmatched paths. Optional.
	NotFound http.HandlerFunc
}

// AdminDeps contains dependencies for admin routes
type AdminDeps struct {
	// Auth
	LoginHandler  *admin.LoginHandler
	LogoutHandler *admin.LogoutHandler

	// Dashboard
	DashboardHandler http.Handler

	// ForbiddenHandler answers signed-in shoppers who reach the admin shell.
	ForbiddenHandler http.Handler

	AuthLimiter *middleware.RateLimiter
}

// limited returns the rate limit middleware, or none when rl is nil.
func limited(rl *middleware.RateLimiter) []router.Middleware {
	if rl == nil {
		return nil
	}
	return []router.Middleware{rl.Middleware}
}
