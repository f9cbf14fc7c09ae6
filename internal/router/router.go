package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/crm-service/internal/handler"
	"github.com/iliyamo/crm-service/internal/middleware"
	"github.com/iliyamo/crm-service/internal/model"
)

// APIPrefix is the root of every CRM route.
const APIPrefix = "/api/v1"

// Role sets used by the route tables.
var (
	adminOnly     = []string{model.RoleAdmin}
	adminManager  = []string{model.RoleAdmin, model.RoleManager}
	adminSalesRep = []string{model.RoleAdmin, model.RoleSalesRep}
)

// Deps carries what the route groups need besides their handler.
type Deps struct {
	Auth  middleware.Authenticator
	Cache *middleware.ResponseCache // nil disables caching
}

// RegisterRoutes registers routes that do not require authentication:
// the banner, the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// protected opens a group under /api/v1/<resource> whose routes require a
// valid bearer credential and go through the resource's response cache.
func protected(e *echo.Echo, d Deps, resource string) *echo.Group {
	return e.Group(
		APIPrefix+"/"+resource,
		middleware.Authenticate(d.Auth),
		d.Cache.For(resource),
	)
}
