package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health responds with a simple JSON payload indicating the service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Root answers GET / so a browser pointed at the host sees the API is alive.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    "crm-service",
		"message": "CRM API is running",
		"docs":    "/api/v1",
	})
}
