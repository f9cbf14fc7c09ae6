package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
)

// Authenticator resolves a raw bearer token to the stored user. It is
// implemented by service.UserService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Authenticate returns an Echo middleware that validates a Bearer access
// token and loads the user it names. The user, its hex id and its stored
// role are put on the Echo context under "user", "user_id" and "role"; the
// id is also attached to the request context as the acting user. Every
// failure is reported as Unauthenticated.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return service.Unauthenticated("Not Authorized, No Token Provided")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if raw == "" {
				return service.Unauthenticated("Not Authorized, No Token!")
			}

			u, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				return err
			}

			id := u.ID.Hex()
			c.Set(ctxUser, u)
			c.Set(ctxUserID, id)
			c.Set(ctxRole, u.Role)
			c.SetRequest(c.Request().WithContext(service.WithActor(c.Request().Context(), id)))
			return next(c)
		}
	}
}
