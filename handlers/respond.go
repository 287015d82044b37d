package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"ticket-storefront/internal/status"
)

// bearerToken extracts the session token from the Authorization header.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(auth)
}

// ok writes the success envelope every endpoint uses.
func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "ok",
		"data":    data,
	})
}

// writeErr maps the error kinds onto HTTP statuses and the error
// envelope.
func writeErr(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, status.ErrAuthRequired):
		code = http.StatusUnauthorized
	case status.IsValidation(err):
		code = http.StatusBadRequest
	case errors.Is(err, status.ErrDuplicate):
		code = http.StatusConflict
	case errors.Is(err, status.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, status.ErrUnavailable):
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"message": "error",
		"error":   err.Error(),
	})
}
