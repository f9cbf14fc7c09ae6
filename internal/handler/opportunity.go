package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
)

// OpportunityHandler serves /opportunities.
type OpportunityHandler struct {
	Opportunities *service.OpportunityService
}

func NewOpportunityHandler(s *service.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{Opportunities: s}
}

func (h *OpportunityHandler) Create(c echo.Context) error {
	var in model.OpportunityInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	opp, err := h.Opportunities.Create(r.Ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, opp)
}

// List handles GET /opportunities?lead=&stage=.
func (h *OpportunityHandler) List(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	lead, err := r.queryID("lead")
	if err != nil {
		return err
	}
	items, err := h.Opportunities.List(r.Ctx, model.OpportunityFilter{
		Lead:  lead,
		Stage: r.Query.Get("stage"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *OpportunityHandler) Get(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	opp, err := h.Opportunities.GetByID(r.Ctx, r.Params["id"])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opp)
}

func (h *OpportunityHandler) Update(c echo.Context) error {
	var in model.OpportunityInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	opp, err := h.Opportunities.Update(r.Ctx, r.Params["id"], in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opp)
}

func (h *OpportunityHandler) Delete(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	if err := h.Opportunities.Delete(r.Ctx, r.Params["id"]); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Opportunity removed"})
}
