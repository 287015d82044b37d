package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderConfirmed = "CONFIRMED"
	OrderCancelled = "CANCELLED"
)

// Order is created by checkout and immutable afterwards, except for a
// single status transition to CANCELLED on refund.
type Order struct {
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Date        time.Time       `json:"date"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
}

type OrderItem struct {
	TicketTypeID string          `json:"ticket_type_id"`
	TicketName   string          `json:"ticket_name"`
	EventID      string          `json:"event_id"`
	EventName    string          `json:"event_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}
