package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/metrics"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/model"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Cfg     config.Config
	Log     logrus.FieldLogger
	DB      handler.Pinger
	Session middleware.SessionResolver
	Auth    *handler.AuthHandler
	Stores  *handler.StoreHandler
	Owner   *handler.OwnerHandler
	Admin   *handler.AdminHandler
}

// New builds the Echo instance: global middleware, validator, error
// handler and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	// Order matters: the request id must exist before anything logs, and
	// Metrics must wrap RequestLogger so it sees the rendered status.
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     d.Cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d.Auth, d.session())
	RegisterUser(e, d.Stores, d.session(model.RoleUser))
	RegisterOwner(e, d.Owner, d.session(model.RoleStoreOwner))
	RegisterAdmin(e, d.Admin, d.session(model.RoleAdmin))
	return e
}

func (d Deps) session(roles ...model.Role) echo.MiddlewareFunc {
	name := d.Cfg.CookieName
	if name == "" {
		name = "jwt"
	}
	return middleware.Session(d.Session, name, roles...)
}

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers the /auth routes. Signup, login, logout and
// password update are public; /auth/check accepts any authenticated
// user.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, anyRole echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.PUT("/update-password", a.UpdatePassword)
	g.GET("/check", a.Check, anyRole)
}
