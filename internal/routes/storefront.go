package routes

import (
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing storefront routes.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Home page and catalog
	r.Get("/{$}", deps.CatalogHandler.Home)
	r.Get("/products", deps.CatalogHandler.Page)
	r.Get("/products/results", deps.CatalogHandler.Results)

	// Shopping cart
	r.Get("/cart", deps.CartHandler.View)
	r.Post("/cart/add", deps.CartHandler.Add)
	r.Post("/cart/update", deps.CartHandler.Update)
	r.Post("/cart/remove", deps.CartHandler.Remove)
	r.Post("/cart/checkout", deps.CartHandler.Checkout)

	r.Get("/checkout", deps.CheckoutHandler.Page)

	// Authentication. Credential POSTs are rate limited.
	r.Get("/login", deps.AuthHandler.ShowLogin)
	r.Post("/login", deps.AuthHandler.Login, limited(deps.AuthLimiter)...)
	r.Get("/register", deps.AuthHandler.ShowRegister)
	r.Post("/register", deps.AuthHandler.Register, limited(deps.AuthLimiter)...)
	r.Post("/register/strength", deps.AuthHandler.Strength)
	r.Post("/logout", deps.AuthHandler.Logout)

	r.Post("/theme", deps.ThemeHandler.Toggle)

	// Account routes (require authentication)
	account := r.Group(middleware.RequireAuth(deps.Sessions))
	account.Get("/profile", deps.ProfileHandler.View)
	account.Post("/profile/edit", deps.ProfileHandler.Edit)
	account.Post("/profile/change", deps.ProfileHandler.Change)
	account.Post("/profile/cancel", deps.ProfileHandler.Cancel)
	account.Post("/profile/save", deps.ProfileHandler.Save)
	account.Get("/orders", deps.OrdersHandler.List)
	account.Get("/orders/{id}", deps.OrdersHandler.Detail)

	if deps.NotFound != nil {
		r.NotFound(deps.NotFound)
	}
}
