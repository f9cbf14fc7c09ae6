package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/service"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles. It must run after
// Authenticate, which stores the user's role under "role". A caller whose
// role is outside the set gets 403 regardless of the request payload.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ctxRole).(string)
			if !ok || !allowed[role] {
				return service.Forbidden("Forbidden to access this route")
			}
			return next(c)
		}
	}
}
