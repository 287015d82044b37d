package handlers

import (
	"github.com/labstack/echo/v5"

	"ticket-storefront/internal/status"
	"ticket-storefront/services"
)

type SeatHandler struct {
	seating *services.SeatingService
}

func NewSeatHandler(seating *services.SeatingService) *SeatHandler {
	return &SeatHandler{seating: seating}
}

// Layout builds the seat grid for an event. category= overrides the
// event's own category string.
func (h *SeatHandler) Layout(c echo.Context) error {
	eventID := c.PathParam("eventId")
	if eventID == "" {
		return writeErr(c, status.Invalid("event_id", "is required"))
	}

	layout, err := h.seating.Layout(c.Request().Context(), eventID, c.QueryParam("category"))
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, layout)
}

// LayoutFromCategory builds a grid from a bare category string, no
// event lookup involved.
func (h *SeatHandler) LayoutFromCategory(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		return writeErr(c, status.Invalid("category", "is required"))
	}

	layout, err := services.GenerateSeatLayout(category)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, layout)
}

func (h *SeatHandler) Purchase(c echo.Context) error {
	var req struct {
		EventID  string   `json:"event_id"`
		Category string   `json:"category"`
		Seats    []string `json:"seats"`
	}
	if err := c.Bind(&req); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}
	if req.EventID == "" {
		return writeErr(c, status.Invalid("event_id", "is required"))
	}

	result, err := h.seating.PurchaseSeats(c.Request().Context(), bearerToken(c), req.EventID, req.Category, req.Seats)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, result)
}
