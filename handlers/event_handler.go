package handlers

import (
	"github.com/labstack/echo/v5"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/services"
)

type EventHandler struct {
	events *services.EventService
	auth   *services.AuthService
}

func NewEventHandler(events *services.EventService, auth *services.AuthService) *EventHandler {
	return &EventHandler{events: events, auth: auth}
}

// ListEvents serves the cached event list, filtered when any filter
// query parameter is set. event_id switches to a single-event lookup
// through the durable cache.
func (h *EventHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()

	if eventID := c.QueryParam("event_id"); eventID != "" {
		event, err := h.events.CachedEventByID(ctx, eventID)
		if err != nil {
			return writeErr(c, err)
		}
		return ok(c, event)
	}

	filter := services.EventFilter{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
	}
	if filter == (services.EventFilter{}) && c.QueryParam("force") != "true" {
		events, err := h.events.Events(ctx, false)
		if err != nil {
			return writeErr(c, err)
		}
		return ok(c, events)
	}

	if c.QueryParam("force") == "true" {
		h.events.Invalidate()
	}
	events, err := h.events.Filter(ctx, filter)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, events)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return writeErr(c, err)
	}

	var event models.Event
	if err := c.Bind(&event); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}

	created, err := h.events.CreateEvent(c.Request().Context(), event)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, created)
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return writeErr(c, err)
	}

	var event models.Event
	if err := c.Bind(&event); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}

	updated, err := h.events.UpdateEvent(c.Request().Context(), event)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, updated)
}

// DeleteEvent carries the id in the body.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return writeErr(c, err)
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := c.Bind(&req); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}
	if req.EventID == "" {
		return writeErr(c, status.Invalid("event_id", "is required"))
	}

	if err := h.events.DeleteEvent(c.Request().Context(), req.EventID); err != nil {
		return writeErr(c, err)
	}
	return ok(c, nil)
}

func (h *EventHandler) requireAdmin(c echo.Context) error {
	role, err := h.auth.Role(c.Request().Context(), bearerToken(c))
	if err != nil {
		return err
	}
	if role != models.RoleAdmin {
		return status.ErrAuthRequired
	}
	return nil
}
