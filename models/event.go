package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical event statuses. The create and edit flows historically used
// different vocabularies (ACTIVE/INACTIVE vs DRAFT/PUBLISHED); legacy
// values are mapped at the normalization boundary.
const (
	EventDraft     = "DRAFT"
	EventPublished = "PUBLISHED"
	EventCancelled = "CANCELLED"
)

type Event struct {
	EventID     string          `json:"event_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Venue       string          `json:"venue"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Capacity    int             `json:"capacity"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NormalizeEventStatus maps any accepted status spelling onto the
// canonical enum. Unknown values normalize to DRAFT.
func NormalizeEventStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case EventPublished, "ACTIVE":
		return EventPublished
	case EventCancelled:
		return EventCancelled
	case EventDraft, "INACTIVE", "":
		return EventDraft
	default:
		return EventDraft
	}
}

// ValidEventStatus reports whether s is already canonical.
func ValidEventStatus(s string) bool {
	switch s {
	case EventDraft, EventPublished, EventCancelled:
		return true
	}
	return false
}
