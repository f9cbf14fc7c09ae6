package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
)

// LeadHandler serves /leads.
type LeadHandler struct {
	Leads *service.LeadService
}

func NewLeadHandler(s *service.LeadService) *LeadHandler {
	return &LeadHandler{Leads: s}
}

func (h *LeadHandler) Create(c echo.Context) error {
	var in model.LeadInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	lead, err := h.Leads.Create(r.Ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, lead)
}

// List handles GET /leads?status=&salesRepresentative=&opportunities=.
// The opportunities filter matches leads holding that opportunity id.
func (h *LeadHandler) List(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	rep, err := r.queryID("salesRepresentative")
	if err != nil {
		return err
	}
	opp, err := r.queryID("opportunities")
	if err != nil {
		return err
	}
	items, err := h.Leads.List(r.Ctx, model.LeadFilter{
		Status:              r.Query.Get("status"),
		SalesRepresentative: rep,
		Opportunity:         opp,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *LeadHandler) Get(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	lead, err := h.Leads.GetByID(r.Ctx, r.Params["id"])
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

func (h *LeadHandler) Update(c echo.Context) error {
	var in model.LeadInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	lead, err := h.Leads.Update(r.Ctx, r.Params["id"], in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lead)
}

// Delete handles DELETE /leads/:id, removing the lead's opportunities
// first.
func (h *LeadHandler) Delete(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	if err := h.Leads.Delete(r.Ctx, r.Params["id"]); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Lead removed"})
}
