package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/service"
)

// UserHandler bundles the account endpoints.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{Users: s}
}

// Register: create the user and return a credential immediately.
func (h *UserHandler) Register(c echo.Context) error {
	var in model.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	res, err := h.Users.Register(r.Ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// Login: verify the password and issue a credential.
func (h *UserHandler) Login(c echo.Context) error {
	var in model.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	res, err := h.Users.Login(r.Ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Profile returns the caller's public fields.
func (h *UserHandler) Profile(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	p, err := h.Users.GetProfile(r.Ctx, r.CallerID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p})
}

// UpdateProfile replaces the caller's name, email and password.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var in model.ProfileInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	p, err := h.Users.UpdateProfile(r.Ctx, r.CallerID(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p})
}

// List returns every user but the caller. Admin only.
func (h *UserHandler) List(c echo.Context) error {
	r, cancel := newRequest(c)
	defer cancel()

	users, err := h.Users.ListAll(r.Ctx, r.CallerID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Update applies a partial update to any user. Admin only.
func (h *UserHandler) Update(c echo.Context) error {
	var in model.UserInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, cancel := newRequest(c)
	defer cancel()

	if err := h.Users.UpdateByID(r.Ctx, r.Params["id"], in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User updated successfully"})
}
