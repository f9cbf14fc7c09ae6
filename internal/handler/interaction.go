package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
)

// InteractionHandler serves /interactions.
type InteractionHandler struct {
	Interactions *service.InteractionService
}

func NewInteractionHandler(s *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{Interactions: s}
}

// Create handles POST /interactions and links the interaction to its
// customer. The customer is returned as an id.
func (h *InteractionHandler) Create(c echo.Context) error {
	var in model.InteractionInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	it, err := h.Interactions.Create(r.Ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, it)
}

// List handles GET /interactions?type=&customer=.
func (h *InteractionHandler) List(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	customer, err := r.queryID("customer")
	if err != nil {
		return err
	}
	items, err := h.Interactions.List(r.Ctx, model.InteractionFilter{
		Type:     r.Query.Get("type"),
		Customer: customer,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *InteractionHandler) Get(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	it, err := h.Interactions.GetByID(r.Ctx, r.Params["id"])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *InteractionHandler) Update(c echo.Context) error {
	var in model.InteractionInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	it, err := h.Interactions.Update(r.Ctx, r.Params["id"], in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, it)
}

func (h *InteractionHandler) Delete(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	if err := h.Interactions.Delete(r.Ctx, r.Params["id"]); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Interaction removed"})
}
