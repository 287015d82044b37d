package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one raw cart line: a ticket-type reference and a quantity.
// A persisted line never has quantity 0; callers delete instead.
type CartItem struct {
	CartItemID   string    `json:"cart_item_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	UserID       string    `json:"user_id"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

// Placeholder values used when a join cannot be resolved. The cart view
// always renders, even with partial backend data.
const (
	DefaultEventName  = "Event Name"
	DefaultTicketName = "Standard Ticket"
	DefaultVenue      = "TBD"
)

// EnrichedCartItem is a raw line joined against ticket-type and event
// reference data. It is a pure projection, recomputed on every cart read
// and never persisted. TicketResolved/EventResolved distinguish a real
// join from a placeholder one.
type EnrichedCartItem struct {
	CartItem

	TicketName        string          `json:"ticket_name"`
	TicketDescription string          `json:"ticket_description"`
	PricePerTicket    decimal.Decimal `json:"price_per_ticket"`
	AvailableQuantity int             `json:"available_quantity"`
	TicketResolved    bool            `json:"ticket_resolved"`

	EventID    string `json:"event_id"`
	EventName  string `json:"event_name"`
	EventImage string `json:"event_image"`
	Venue      string `json:"venue"`
	Date       string `json:"date"`
	Time       string `json:"time"`

	EventResolved bool `json:"event_resolved"`

	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartTotal sums the line totals of an enriched cart.
func CartTotal(items []EnrichedCartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}
