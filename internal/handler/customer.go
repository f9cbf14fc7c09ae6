package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
)

// CustomerHandler serves /customers.
type CustomerHandler struct {
	Customers *service.CustomerService
}

func NewCustomerHandler(s *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{Customers: s}
}

// Create handles POST /customers. The response omits the interaction list.
func (h *CustomerHandler) Create(c echo.Context) error {
	var in model.CustomerInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	cust, err := h.Customers.Create(r.Ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cust.Summary())
}

// List handles GET /customers with interactions resolved.
func (h *CustomerHandler) List(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	items, err := h.Customers.List(r.Ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	cust, err := h.Customers.GetByID(r.Ctx, r.Params["id"])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	var in model.CustomerInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	cust, err := h.Customers.Update(r.Ctx, r.Params["id"], in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cust.Summary())
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	if err := h.Customers.Delete(r.Ctx, r.Params["id"]); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer removed"})
}
