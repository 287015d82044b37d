package handlers

import (
	"github.com/labstack/echo/v5"

	"ticket-storefront/models"
	"ticket-storefront/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var creds models.Credentials
	if err := c.Bind(&creds); err != nil {
		return writeErr(c, err)
	}

	session, token, err := h.auth.Login(c.Request().Context(), creds)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, map[string]any{
		"user":  session,
		"token": token,
	})
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return writeErr(c, err)
	}
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}

	session, token, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, map[string]any{
		"user":  session,
		"token": token,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), bearerToken(c)); err != nil {
		return writeErr(c, err)
	}
	return ok(c, nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
	session, err := h.auth.CurrentUser(c.Request().Context(), bearerToken(c))
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, session)
}
