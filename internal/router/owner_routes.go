package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/handler"
)

// RegisterOwner registers store owner endpoints under /owner.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, session echo.MiddlewareFunc) {
	g := e.Group("/owner", session)
	g.GET("/dashboard", o.Dashboard)
}

// RegisterAdmin registers administrator endpoints under /admin. Store
// creation is admin-only.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, session echo.MiddlewareFunc) {
	g := e.Group("/admin", session)
	g.POST("/stores", a.CreateStore)
	g.POST("/users", a.CreateUser)
	g.GET("/dashboard", a.GetDashboard)
}
