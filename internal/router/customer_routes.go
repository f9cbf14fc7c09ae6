package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/handler"
	"github.com/iliyamo/crm-service/internal/middleware"
)

// RegisterCustomers registers /customers. Reads are open to any
// authenticated user; writes need admin or manager and deletion admin.
func RegisterCustomers(e *echo.Echo, h *handler.CustomerHandler, d Deps) {
	g := protected(e, d, "customers")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, middleware.RequireRole(adminManager...))
	g.PUT("/:id", h.Update, middleware.RequireRole(adminManager...))
	g.DELETE("/:id", h.Delete, middleware.RequireRole(adminOnly...))
}

// RegisterInteractions registers /interactions. Writes need admin or
// sales-rep and deletion admin.
func RegisterInteractions(e *echo.Echo, h *handler.InteractionHandler, d Deps) {
	g := protected(e, d, "interactions")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, middleware.RequireRole(adminSalesRep...))
	g.PUT("/:id", h.Update, middleware.RequireRole(adminSalesRep...))
	g.DELETE("/:id", h.Delete, middleware.RequireRole(adminOnly...))
}
