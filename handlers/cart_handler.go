package handlers

import (
	"encoding/json"
	"io"

	"github.com/labstack/echo/v5"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/services"
)

type CartHandler struct {
	cart *services.CartService
}

func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	enrich := c.QueryParam("enrich") != "false"

	items, err := h.cart.GetCartItems(c.Request().Context(), bearerToken(c), enrich)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, items)
}

// AddToCart accepts a single cart item or a one-element array; larger
// batches are rejected so callers never come to depend on them.
func (h *CartHandler) AddToCart(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeErr(c, status.Invalid("body", "could not read request"))
	}

	items, err := decodeCartItems(body)
	if err != nil {
		return writeErr(c, err)
	}
	if len(items) > 1 {
		return writeErr(c, status.Invalid("items", "only one item per request"))
	}

	created, err := h.cart.AddToCart(c.Request().Context(), bearerToken(c), items...)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, created)
}

func (h *CartHandler) UpdateCart(c echo.Context) error {
	var req struct {
		CartItemID   string `json:"cart_item_id"`
		Quantity     int    `json:"quantity"`
		TicketTypeID string `json:"ticket_type_id"`
	}
	if err := c.Bind(&req); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}

	err := h.cart.UpdateQuantity(c.Request().Context(), bearerToken(c), req.CartItemID, req.Quantity, req.TicketTypeID)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, nil)
}

// RemoveFromCart carries the record id in the body, not the path.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	var req struct {
		CartItemID string `json:"cart_item_id"`
	}
	if err := c.Bind(&req); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}

	err := h.cart.RemoveFromCart(c.Request().Context(), bearerToken(c), req.CartItemID)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, nil)
}

func (h *CartHandler) Checkout(c echo.Context) error {
	var req struct {
		Items []models.EnrichedCartItem `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return writeErr(c, status.Invalid("body", "invalid json"))
	}

	order, err := h.cart.Checkout(c.Request().Context(), bearerToken(c), req.Items)
	if err != nil {
		return writeErr(c, err)
	}
	return ok(c, order)
}

func decodeCartItems(body []byte) ([]models.CartItem, error) {
	var item models.CartItem
	if err := json.Unmarshal(body, &item); err == nil {
		return []models.CartItem{item}, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}
	return nil, status.Invalid("body", "expected a cart item or an array of cart items")
}
