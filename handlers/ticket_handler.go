package handlers

import (
	"strings"

	"github.com/labstack/echo/v5"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/services"
)

type TicketHandler struct {
	store    backend.Store
	orders   *services.OrderService
	auth     *services.AuthService
	notifier *services.Notifier
}

func NewTicketHandler(store backend.Store, orders *services.OrderService, auth *services.AuthService, notifier *services.Notifier) *TicketHandler {
	return &TicketHandler{store: store, orders: orders, auth: auth, notifier: notifier}
}

// TicketTypes lists the catalog, or a batch when ids= is set.
func (h *TicketHandler) TicketTypes(c echo.Context) error {
	ctx := c.Request().Context()

	if raw := c.QueryParam("ids"); raw != "" {
		ids := strings.Split(raw, ",")
		byID, err := h.store.TicketTypesByIDs(ctx, ids)
		if err != nil {
			return writeErr(c, err)
		}
		return ok(c, orderedTicketTypes(ids, byID))
	}

	types, err := h.store.TicketTypes(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, types)
}

// orderedTicketTypes flattens a batch lookup in request order, skipping
// blanks, repeats and ids the backend did not resolve.
func orderedTicketTypes(ids []string, byID map[string]models.TicketType) []models.TicketType {
	types := make([]models.TicketType, 0, len(byID))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if tt, ok := byID[id]; ok {
			types = append(types, tt)
		}
	}
	return types
}

func (h *TicketHandler) TicketTypesByEvent(c echo.Context) error {
	eventID := c.PathParam("eventId")
	if eventID == "" {
		return writeErr(c, status.Invalid("event_id", "is required"))
	}

	types, err := h.store.TicketTypesByEvent(c.Request().Context(), eventID)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, types)
}

// UserOrders returns a user's purchase history. Users see only their
// own orders; admins see anyone's.
func (h *TicketHandler) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := h.auth.CurrentUser(ctx, bearerToken(c))
	if err != nil {
		return writeErr(c, err)
	}

	userID := c.PathParam("userId")
	if userID != session.UserID && session.Role != models.RoleAdmin {
		return writeErr(c, status.ErrAuthRequired)
	}

	orders, err := h.orders.OrdersByUser(ctx, userID)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, orders)
}

// Refund cancels an order; the id travels in the body.
func (h *TicketHandler) Refund(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := h.auth.CurrentUser(ctx, bearerToken(c))
	if err != nil {
		return writeErr(c, err)
	}

	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := c.Bind(&req); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}
	if req.OrderID == "" {
		return writeErr(c, status.Invalid("order_id", "is required"))
	}

	if err := h.orders.Cancel(ctx, req.OrderID, session.UserID); err != nil {
		return writeErr(c, err)
	}

	h.notifier.NotifyRefund(session.UserID, req.OrderID)
	return ok(c, nil)
}
