package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/handler"
	"github.com/iliyamo/crm-service/internal/middleware"
)

// RegisterUsers registers the account endpoints. Register and login are
// public; the profile is open to any authenticated caller and the user
// administration routes are admin only.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, d Deps) {
	pub := e.Group(APIPrefix+"/users", d.Cache.For("users"))
	pub.POST("/register", h.Register)
	pub.POST("/login", h.Login)

	g := protected(e, d, "users")
	g.GET("/profile", h.Profile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("", h.List, middleware.RequireRole(adminOnly...))
	g.PUT("/:id", h.Update, middleware.RequireRole(adminOnly...))
}
