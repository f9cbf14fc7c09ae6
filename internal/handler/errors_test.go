package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/crm-service/internal/service"
)

func runErrorHandler(production bool, method string, err error) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/api/v1/things", nil), rec)
	NewErrorHandler(production)(err, c)
	return rec
}

func TestErrorHandlerStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.Validation("Please add a type"), http.StatusBadRequest},
		{service.Unauthenticated("Not Authorized, No Token!"), http.StatusUnauthorized},
		{service.Forbidden("Forbidden to access this route"), http.StatusForbidden},
		{service.NotFound("Lead not found"), http.StatusNotFound},
		{service.Conflict("User already exists"), http.StatusConflict},
		{errors.Wrap(service.NotFound("Lead not found"), "delete lead"), http.StatusNotFound},
		{echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"), http.StatusRequestEntityTooLarge},
		{errors.New("mongo: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := runErrorHandler(true, http.MethodGet, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestErrorHandlerBody(t *testing.T) {
	rec := runErrorHandler(true, http.MethodGet, errors.New("mongo: connection reset"))
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())

	rec = runErrorHandler(false, http.MethodGet, errors.New("mongo: connection reset"))
	assert.Contains(t, rec.Body.String(), `"message":"mongo: connection reset"`)
	assert.Contains(t, rec.Body.String(), `"stack"`)

	rec = runErrorHandler(true, http.MethodPatch, echo.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Route not found - PATCH: /api/v1/things"}`, rec.Body.String())

	rec = runErrorHandler(true, http.MethodHead, service.NotFound("Lead not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
