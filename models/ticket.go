package models

import "github.com/shopspring/decimal"

// TicketType is read-mostly reference data. AvailableQuantity bounds the
// quantity selectable for any cart line referencing it.
type TicketType struct {
	TicketTypeID      string          `json:"ticket_type_id"`
	EventID           string          `json:"event_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
}
