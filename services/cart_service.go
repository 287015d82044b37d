package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/monitoring"
)

// orderRecorder persists confirmed orders locally after checkout.
type orderRecorder interface {
	Record(ctx context.Context, order *models.Order) error
}

// CartService runs the cart lifecycle against whichever backend the
// failover layer currently routes to. Every operation authenticates the
// bearer token first; a backend rejection of an authenticated call
// clears the local session so the client is forced back to login.
type CartService struct {
	store    backend.Store
	auth     SessionSource
	enricher *Enricher
	orders   orderRecorder
	notifier *Notifier
}

func NewCartService(store backend.Store, auth SessionSource, enricher *Enricher, orders orderRecorder, notifier *Notifier) *CartService {
	return &CartService{
		store:    store,
		auth:     auth,
		enricher: enricher,
		orders:   orders,
		notifier: notifier,
	}
}

// GetCartItems returns the user's cart, enriched unless the caller opts
// out. Fetch failures degrade to an empty cart so the view always
// renders; only a bad token is an error.
func (s *CartService) GetCartItems(ctx context.Context, token string, enrich bool) ([]models.EnrichedCartItem, error) {
	session, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	ctx = backend.WithToken(ctx, token)

	items, err := s.store.CartItems(ctx, session.UserID)
	if err != nil {
		s.handleAuthFailure(ctx, session.UserID, err)
		log.Printf("cart: fetch for %s: %v", session.UserID, err)
		monitoring.TrackCartOperation("get", "degraded")
		return []models.EnrichedCartItem{}, nil
	}

	monitoring.TrackCartOperation("get", "ok")
	if enrich {
		return s.enricher.Enrich(ctx, items), nil
	}

	// Raw reads carry only the stored fields. Display defaults are the
	// enricher's job, so a raw line stays distinguishable from a line
	// whose enrichment degraded.
	out := make([]models.EnrichedCartItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.EnrichedCartItem{
			CartItem:       item,
			PricePerTicket: decimal.Zero,
			TotalPrice:     decimal.Zero,
		})
	}
	return out, nil
}

// AddToCart adds the first item of the batch. Multi-item payloads are
// rejected at the handler; the variadic form exists so seat purchases
// can reuse the same validation path one seat at a time.
func (s *CartService) AddToCart(ctx context.Context, token string, items ...models.CartItem) (*models.CartItem, error) {
	session, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	ctx = backend.WithToken(ctx, token)
	if len(items) == 0 {
		return nil, status.Invalid("items", "at least one item is required")
	}

	item := items[0]
	if item.TicketTypeID == "" {
		return nil, status.Invalid("ticket_type_id", "is required")
	}
	if item.Quantity < 1 {
		return nil, status.Invalid("quantity", "must be at least 1")
	}

	if err := s.checkAvailability(ctx, item.TicketTypeID, item.Quantity); err != nil {
		monitoring.TrackCartOperation("add", "rejected")
		return nil, err
	}

	item.UserID = session.UserID
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	created, err := s.store.CreateCartItem(ctx, item)
	if err != nil {
		s.handleAuthFailure(ctx, session.UserID, err)
		monitoring.TrackCartOperation("add", "error")
		return nil, err
	}

	monitoring.TrackCartOperation("add", "ok")
	return created, nil
}

// UpdateQuantity sets a line's quantity. A quantity below one removes
// the line instead.
func (s *CartService) UpdateQuantity(ctx context.Context, token, cartItemID string, quantity int, ticketTypeID string) error {
	if quantity < 1 {
		return s.RemoveFromCart(ctx, token, cartItemID)
	}

	session, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	ctx = backend.WithToken(ctx, token)
	if cartItemID == "" {
		return status.Invalid("cart_item_id", "is required")
	}

	if ticketTypeID != "" {
		if err := s.checkAvailability(ctx, ticketTypeID, quantity); err != nil {
			monitoring.TrackCartOperation("update", "rejected")
			return err
		}
	}

	if err := s.store.UpdateCartItem(ctx, cartItemID, quantity); err != nil {
		s.handleAuthFailure(ctx, session.UserID, err)
		monitoring.TrackCartOperation("update", "error")
		return err
	}

	monitoring.TrackCartOperation("update", "ok")
	return nil
}

// RemoveFromCart deletes a line. Removing a line that is already gone
// succeeds.
func (s *CartService) RemoveFromCart(ctx context.Context, token, cartItemID string) error {
	session, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	ctx = backend.WithToken(ctx, token)
	if cartItemID == "" {
		return status.Invalid("cart_item_id", "is required")
	}

	err = s.store.DeleteCartItem(ctx, cartItemID)
	if errors.Is(err, status.ErrNotFound) {
		monitoring.TrackCartOperation("remove", "ok")
		return nil
	}
	if err != nil {
		s.handleAuthFailure(ctx, session.UserID, err)
		monitoring.TrackCartOperation("remove", "error")
		return err
	}

	monitoring.TrackCartOperation("remove", "ok")
	return nil
}

// Checkout converts the given cart lines into a confirmed order in a
// single backend call. Either every line checks out or none does.
func (s *CartService) Checkout(ctx context.Context, token string, lines []models.EnrichedCartItem) (*models.Order, error) {
	session, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	ctx = backend.WithToken(ctx, token)
	if len(lines) == 0 {
		return nil, status.Invalid("items", "cart is empty")
	}

	cartItemIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.CartItemID == "" {
			return nil, status.Invalid("cart_item_id", "is required on every line")
		}
		cartItemIDs = append(cartItemIDs, line.CartItemID)
	}

	lines = s.repriceLines(ctx, lines)

	if _, err := s.store.Checkout(ctx, session.UserID, cartItemIDs); err != nil {
		s.handleAuthFailure(ctx, session.UserID, err)
		monitoring.TrackCartOperation("checkout", "error")
		return nil, err
	}

	order := buildOrder(session.UserID, lines)
	if err := s.orders.Record(ctx, order); err != nil {
		// The backend already committed; losing local history must not
		// fail the purchase.
		log.Printf("cart: record order %s: %v", order.OrderID, err)
	}

	s.notifier.NotifyOrderConfirmed(session.UserID, order)
	monitoring.TrackCartOperation("checkout", "ok")
	monitoring.TrackCheckout()
	return order, nil
}

func buildOrder(userID string, lines []models.EnrichedCartItem) *models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		lineTotal := line.PricePerTicket.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			TicketTypeID: line.TicketTypeID,
			TicketName:   line.TicketName,
			EventID:      line.EventID,
			EventName:    line.EventName,
			Quantity:     line.Quantity,
			UnitPrice:    line.PricePerTicket,
			LineTotal:    lineTotal,
		})
		total = total.Add(lineTotal)
	}

	return &models.Order{
		OrderID:     uuid.NewString(),
		UserID:      userID,
		Date:        time.Now().UTC(),
		Items:       items,
		TotalAmount: total,
		Status:      models.OrderConfirmed,
	}
}

// repriceLines replaces client-supplied prices with the catalog values
// in one batch lookup, so the recorded order never trusts the request
// body. When the lookup degrades the submitted lines are kept as-is;
// the backend already committed the charge.
func (s *CartService) repriceLines(ctx context.Context, lines []models.EnrichedCartItem) []models.EnrichedCartItem {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if line.TicketTypeID == "" || seen[line.TicketTypeID] {
			continue
		}
		seen[line.TicketTypeID] = true
		ids = append(ids, line.TicketTypeID)
	}
	if len(ids) == 0 {
		return lines
	}

	types, err := s.store.TicketTypesByIDs(ctx, ids)
	if err != nil {
		log.Printf("cart: reprice lookup: %v", err)
		return lines
	}

	out := make([]models.EnrichedCartItem, len(lines))
	copy(out, lines)
	for i := range out {
		tt, ok := types[out[i].TicketTypeID]
		if !ok {
			continue
		}
		out[i].PricePerTicket = tt.Price
		out[i].TicketName = tt.Name
		if tt.EventID != "" {
			out[i].EventID = tt.EventID
		}
		out[i].TotalPrice = tt.Price.Mul(decimal.NewFromInt(int64(out[i].Quantity)))
	}
	return out
}

func (s *CartService) checkAvailability(ctx context.Context, ticketTypeID string, quantity int) error {
	types, err := s.store.TicketTypesByIDs(ctx, []string{ticketTypeID})
	if err != nil {
		// Availability is advisory; the backend enforces it at checkout.
		log.Printf("cart: availability lookup %s: %v", ticketTypeID, err)
		return nil
	}
	tt, ok := types[ticketTypeID]
	if !ok {
		return status.Invalid("ticket_type_id", "unknown ticket type")
	}
	if tt.AvailableQuantity < quantity {
		return status.Invalid("quantity", "exceeds available tickets")
	}
	return nil
}

func (s *CartService) handleAuthFailure(ctx context.Context, userID string, err error) {
	if !errors.Is(err, status.ErrAuthRequired) {
		return
	}
	if err := s.auth.ForceLogout(ctx, userID); err != nil {
		log.Printf("cart: force logout %s: %v", userID, err)
	}
}
