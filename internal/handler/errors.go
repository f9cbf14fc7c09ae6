package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/crm-service/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindValidation:      http.StatusBadRequest,
	service.KindUnauthenticated: http.StatusUnauthorized,
	service.KindForbidden:       http.StatusForbidden,
	service.KindNotFound:        http.StatusNotFound,
	service.KindConflict:        http.StatusConflict,
}

// NewErrorHandler returns the central echo.HTTPErrorHandler. Domain errors
// map to their status; anything else is a 500 and is reported to Sentry
// when a hub is bound to the request. Outside production the body carries
// the error's stack trace.
func NewErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := classify(err, c)

		if status >= http.StatusInternalServerError {
			slog.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "err", err)
			if hub := sentryecho.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			} else if sentry.CurrentHub().Client() != nil {
				sentry.CaptureException(err)
			}
			if production {
				msg = http.StatusText(status)
			}
		}

		body := echo.Map{"message": msg}
		if !production {
			body["stack"] = fmt.Sprintf("%+v", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			slog.Warn("write error response failed", "err", werr)
		}
	}
}

func classify(err error, c echo.Context) (int, string) {
	if e, ok := service.AsError(err); ok {
		if status, known := kindStatus[e.Kind]; known {
			return status, e.Message
		}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			r := c.Request()
			return http.StatusNotFound, fmt.Sprintf("Route not found - %s: %s", r.Method, r.URL.Path)
		}
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	}
	return http.StatusInternalServerError, err.Error()
}
