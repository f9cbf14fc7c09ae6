package middleware

// identity.go holds the context keys under which Authenticate stores the
// resolved caller, and the accessors the handlers and the other middleware
// use to read them back.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/model"
)

const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// CurrentUser returns the user resolved by Authenticate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(ctxUser).(*model.User)
	return u, ok && u != nil
}

// userID returns the hex id of the authenticated caller, or "guest".
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "guest"
}
