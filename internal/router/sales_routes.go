package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/handler"
	"github.com/iliyamo/crm-service/internal/middleware"
)

// RegisterLeads registers /leads. Writes need admin or sales-rep and
// deletion (which cascades to opportunities) admin.
func RegisterLeads(e *echo.Echo, h *handler.LeadHandler, d Deps) {
	g := protected(e, d, "leads")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, middleware.RequireRole(adminSalesRep...))
	g.PUT("/:id", h.Update, middleware.RequireRole(adminSalesRep...))
	g.DELETE("/:id", h.Delete, middleware.RequireRole(adminOnly...))
}

// RegisterOpportunities registers /opportunities. Any authenticated user
// may read and write; deletion needs manager or admin.
func RegisterOpportunities(e *echo.Echo, h *handler.OpportunityHandler, d Deps) {
	g := protected(e, d, "opportunities")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete, middleware.RequireRole(adminManager...))
}
