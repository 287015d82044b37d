package services

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"ticket-storefront/models"
)

// ticketTypeLookup is the batch collaborator boundary: one request for
// the distinct set of ids, never a full-catalog fetch.
type ticketTypeLookup interface {
	TicketTypesByIDs(ctx context.Context, ids []string) (map[string]models.TicketType, error)
}

// eventLookup resolves events through the cache with partial-failure
// tolerance; failed ids are simply absent from the map.
type eventLookup interface {
	MultipleCachedEvents(ctx context.Context, ids []string) map[string]models.Event
}

// Enricher joins raw cart lines against ticket-type and event reference
// data. Enrichment is total: the output always has the same length as
// the input and every line has non-empty names and numeric prices,
// falling back to placeholders when a join cannot be resolved. It never
// returns an error to the cart view.
type Enricher struct {
	types  ticketTypeLookup
	events eventLookup
}

func NewEnricher(types ticketTypeLookup, events eventLookup) *Enricher {
	return &Enricher{types: types, events: events}
}

func (e *Enricher) Enrich(ctx context.Context, items []models.CartItem) []models.EnrichedCartItem {
	if len(items) == 0 {
		return []models.EnrichedCartItem{}
	}

	ticketIDs := distinctTicketTypeIDs(items)

	typesByID, err := e.types.TicketTypesByIDs(ctx, ticketIDs)
	if err != nil {
		// Degrade to placeholders rather than propagating: the cart view
		// must always render.
		log.Printf("enrich: ticket type batch: %v", err)
		typesByID = map[string]models.TicketType{}
	}

	eventIDs := distinctEventIDs(typesByID)
	eventsByID := e.events.MultipleCachedEvents(ctx, eventIDs)

	out := make([]models.EnrichedCartItem, 0, len(items))
	for _, item := range items {
		out = append(out, joinLine(item, typesByID, eventsByID))
	}
	return out
}

func distinctTicketTypeIDs(items []models.CartItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.TicketTypeID == "" {
			continue
		}
		if _, ok := seen[item.TicketTypeID]; ok {
			continue
		}
		seen[item.TicketTypeID] = struct{}{}
		ids = append(ids, item.TicketTypeID)
	}
	return ids
}

func distinctEventIDs(types map[string]models.TicketType) []string {
	seen := make(map[string]struct{}, len(types))
	ids := make([]string, 0, len(types))
	for _, tt := range types {
		if tt.EventID == "" {
			continue
		}
		if _, ok := seen[tt.EventID]; ok {
			continue
		}
		seen[tt.EventID] = struct{}{}
		ids = append(ids, tt.EventID)
	}
	return ids
}

func joinLine(item models.CartItem, types map[string]models.TicketType, events map[string]models.Event) models.EnrichedCartItem {
	line := models.EnrichedCartItem{
		CartItem:       item,
		TicketName:     models.DefaultTicketName,
		EventName:      models.DefaultEventName,
		Venue:          models.DefaultVenue,
		PricePerTicket: decimal.Zero,
	}

	if tt, ok := types[item.TicketTypeID]; ok {
		line.TicketResolved = true
		line.TicketName = tt.Name
		line.TicketDescription = tt.Description
		line.PricePerTicket = tt.Price
		line.AvailableQuantity = tt.AvailableQuantity
		line.EventID = tt.EventID

		if ev, ok := events[tt.EventID]; ok {
			line.EventResolved = true
			line.EventName = ev.Title
			line.EventImage = ev.Image
			line.Venue = ev.Venue
			line.Date = ev.Date
			line.Time = ev.Time
		}
	}

	line.TotalPrice = line.PricePerTicket.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return line
}
