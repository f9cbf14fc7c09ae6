package handler

import (
	"context"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/middleware"
	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
)

// requestTimeout bounds the store calls made on behalf of one request.
const requestTimeout = 5 * time.Second

// Request is what a handler needs from the HTTP exchange: a deadline-bound
// context, the path and query parameters and the resolved caller (nil on
// public routes).
type Request struct {
	Ctx    context.Context
	Params map[string]string
	Query  url.Values
	User   *model.User
}

// newRequest extracts the Request from c. The returned cancel func must be
// called when the handler returns.
func newRequest(c echo.Context) (*Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	params := make(map[string]string, len(c.ParamNames()))
	for _, name := range c.ParamNames() {
		params[name] = c.Param(name)
	}
	u, _ := middleware.CurrentUser(c)
	return &Request{Ctx: ctx, Params: params, Query: c.QueryParams(), User: u}, cancel
}

// CallerID is the hex id of the authenticated caller, or "".
func (r *Request) CallerID() string {
	if r.User == nil {
		return ""
	}
	return r.User.ID.Hex()
}

// queryID parses an optional id-valued query parameter.
func (r *Request) queryID(name string) (*bson.ObjectID, error) {
	raw := r.Query.Get(name)
	if raw == "" {
		return nil, nil
	}
	id, ok := model.ParseID(raw)
	if !ok {
		return nil, service.Validation("Invalid " + name + " id")
	}
	return &id, nil
}

// bind decodes the JSON body into dst.
func bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return service.Validation("Invalid request body")
	}
	return nil
}
