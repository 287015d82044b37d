package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

type stubTypeLookup struct {
	types map[string]models.TicketType
	err   error
	calls [][]string
}

func (s *stubTypeLookup) TicketTypesByIDs(ctx context.Context, ids []string) (map[string]models.TicketType, error) {
	s.calls = append(s.calls, ids)
	return s.types, s.err
}

type stubEventLookup struct {
	events map[string]models.Event
	calls  [][]string
}

func (s *stubEventLookup) MultipleCachedEvents(ctx context.Context, ids []string) map[string]models.Event {
	s.calls = append(s.calls, ids)
	return s.events
}

func TestEnricher_EmptyInputMakesNoCalls(t *testing.T) {
	types := &stubTypeLookup{}
	events := &stubEventLookup{}
	e := NewEnricher(types, events)

	out := e.Enrich(context.Background(), nil)

	assert.Empty(t, out)
	assert.Empty(t, types.calls)
	assert.Empty(t, events.calls)
}

func TestEnricher_FullJoin(t *testing.T) {
	types := &stubTypeLookup{types: map[string]models.TicketType{
		"tt1": {
			TicketTypeID:      "tt1",
			EventID:           "e1",
			Name:              "Standard",
			Price:             decimal.RequireFromString("40"),
			AvailableQuantity: 10,
		},
	}}
	events := &stubEventLookup{events: map[string]models.Event{
		"e1": {EventID: "e1", Title: "Summer Concert", Venue: "Hall A", Date: "2026-09-01", Time: "19:00"},
	}}
	e := NewEnricher(types, events)

	out := e.Enrich(context.Background(), []models.CartItem{
		{CartItemID: "c1", TicketTypeID: "tt1", Quantity: 2},
	})

	require.Len(t, out, 1)
	line := out[0]
	assert.True(t, line.TicketResolved)
	assert.True(t, line.EventResolved)
	assert.Equal(t, "Standard", line.TicketName)
	assert.Equal(t, "Summer Concert", line.EventName)
	assert.Equal(t, "Hall A", line.Venue)
	assert.Equal(t, "80", line.TotalPrice.String())
}

func TestEnricher_DeduplicatesLookups(t *testing.T) {
	types := &stubTypeLookup{types: map[string]models.TicketType{
		"tt1": {TicketTypeID: "tt1", EventID: "e1", Name: "Standard"},
	}}
	events := &stubEventLookup{events: map[string]models.Event{}}
	e := NewEnricher(types, events)

	e.Enrich(context.Background(), []models.CartItem{
		{CartItemID: "c1", TicketTypeID: "tt1", Quantity: 1},
		{CartItemID: "c2", TicketTypeID: "tt1", Quantity: 3},
	})

	require.Len(t, types.calls, 1)
	assert.Equal(t, []string{"tt1"}, types.calls[0])
	require.Len(t, events.calls, 1)
	assert.Equal(t, []string{"e1"}, events.calls[0])
}

func TestEnricher_UnresolvedTicketGetsPlaceholders(t *testing.T) {
	types := &stubTypeLookup{types: map[string]models.TicketType{}}
	events := &stubEventLookup{events: map[string]models.Event{}}
	e := NewEnricher(types, events)

	out := e.Enrich(context.Background(), []models.CartItem{
		{CartItemID: "c1", TicketTypeID: "tt-missing", Quantity: 2},
	})

	require.Len(t, out, 1)
	line := out[0]
	assert.False(t, line.TicketResolved)
	assert.False(t, line.EventResolved)
	assert.Equal(t, models.DefaultTicketName, line.TicketName)
	assert.Equal(t, models.DefaultEventName, line.EventName)
	assert.Equal(t, models.DefaultVenue, line.Venue)
	assert.True(t, line.PricePerTicket.IsZero())
	assert.True(t, line.TotalPrice.IsZero())
}

func TestEnricher_UnresolvedEventKeepsTicketFields(t *testing.T) {
	types := &stubTypeLookup{types: map[string]models.TicketType{
		"tt1": {TicketTypeID: "tt1", EventID: "e-gone", Name: "VIP", Price: decimal.RequireFromString("120.50")},
	}}
	events := &stubEventLookup{events: map[string]models.Event{}}
	e := NewEnricher(types, events)

	out := e.Enrich(context.Background(), []models.CartItem{
		{CartItemID: "c1", TicketTypeID: "tt1", Quantity: 1},
	})

	require.Len(t, out, 1)
	line := out[0]
	assert.True(t, line.TicketResolved)
	assert.False(t, line.EventResolved)
	assert.Equal(t, "VIP", line.TicketName)
	assert.Equal(t, models.DefaultEventName, line.EventName)
	assert.Equal(t, "120.5", line.TotalPrice.String())
}

func TestEnricher_BatchErrorDegradesToPlaceholders(t *testing.T) {
	types := &stubTypeLookup{err: status.ErrUnavailable}
	events := &stubEventLookup{events: map[string]models.Event{}}
	e := NewEnricher(types, events)

	out := e.Enrich(context.Background(), []models.CartItem{
		{CartItemID: "c1", TicketTypeID: "tt1", Quantity: 2},
		{CartItemID: "c2", TicketTypeID: "tt2", Quantity: 1},
	})

	// Same length as the input, all placeholder decorated, no error.
	require.Len(t, out, 2)
	for _, line := range out {
		assert.False(t, line.TicketResolved)
		assert.Equal(t, models.DefaultTicketName, line.TicketName)
	}
}
