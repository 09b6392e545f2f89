package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/handler"
)

// RegisterUser registers the endpoints of the "user" role under /user.
// Rating submission accepts POST and PUT; both create or overwrite.
func RegisterUser(e *echo.Echo, h *handler.StoreHandler, session echo.MiddlewareFunc) {
	g := e.Group("/user", session)
	g.GET("/stores", h.ListStores)
	g.POST("/stores/:id/rating", h.RateStore)
	g.PUT("/stores/:id/rating", h.RateStore)
}
