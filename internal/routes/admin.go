package routes

import (
	"github.com/dukerupert/artesania/internal/middleware"
	"github.com/dukerupert/artesania/internal/router"
)

// RegisterAdminRoutes registers the admin shell routes. The login form is
// public; everything else requires an elevated role.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	r.Get("/admin/login", deps.LoginHandler.ShowForm)
	r.Post("/admin/login", deps.LoginHandler.HandleSubmit, limited(deps.AuthLimiter)...)

	admin := r.Group(middleware.RequireElevated(deps.ForbiddenHandler))
	admin.Get("/admin", deps.DashboardHandler.ServeHTTP)
	admin.Post("/admin/logout", deps.LogoutHandler.HandleSubmit)
}
