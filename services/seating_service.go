package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

// Layout category grammar: "<rows><columnLetter>[+<vipRows>]", e.g.
// "7J+2" is 7 rows of 10 seats with the first 2 rows VIP.
var categoryPattern = regexp.MustCompile(`^(\d+)([A-Za-z])(?:\+(\d+))?$`)

// seatAdder is the slice of the cart surface seat purchases need.
type seatAdder interface {
	AddToCart(ctx context.Context, token string, items ...models.CartItem) (*models.CartItem, error)
}

// SeatingService builds seat grids from event category strings and maps
// seat selections onto cart lines. Seats are ephemeral; only the
// resulting cart lines persist.
type SeatingService struct {
	store backend.Store
	cart  seatAdder
}

func NewSeatingService(store backend.Store, cart seatAdder) *SeatingService {
	return &SeatingService{store: store, cart: cart}
}

// GenerateSeatLayout parses a category string into a seat grid.
func GenerateSeatLayout(category string) (*models.SeatLayout, error) {
	m := categoryPattern.FindStringSubmatch(strings.TrimSpace(category))
	if m == nil {
		return nil, status.Invalid("category", fmt.Sprintf("%q does not match <rows><columnLetter>[+<vipRows>]", category))
	}

	rows, err := strconv.Atoi(m[1])
	if err != nil || rows <= 0 {
		return nil, status.Invalid("category", "row count must be positive")
	}

	letter := strings.ToUpper(m[2])[0]
	cols := int(letter-'A') + 1
	if cols <= 0 {
		return nil, status.Invalid("category", "column letter must be A-Z")
	}

	vipRows := 0
	if m[3] != "" {
		vipRows, _ = strconv.Atoi(m[3])
	}
	if vipRows < 0 || vipRows > rows {
		log.Printf("seating: vip row count %d out of range for %d rows, using 0", vipRows, rows)
		vipRows = 0
	}

	layout := &models.SeatLayout{
		Category: category,
		Rows:     rows,
		Cols:     cols,
		VIPRows:  vipRows,
		Seats:    make([][]models.Seat, rows),
	}
	for r := 0; r < rows; r++ {
		layout.Seats[r] = make([]models.Seat, cols)
		for c := 0; c < cols; c++ {
			layout.Seats[r][c] = models.Seat{
				ID:    models.SeatID(r, c+1),
				Row:   r,
				Col:   c + 1,
				IsVip: r < vipRows,
			}
		}
	}
	return layout, nil
}

// ResolveSeatTicketTypes picks the VIP and standard ticket-type ids
// from an event's ticket types by name. Any type whose name does not
// mention VIP counts as standard.
func ResolveSeatTicketTypes(types []models.TicketType) (vipID, standardID string, err error) {
	for _, tt := range types {
		name := strings.ToLower(tt.Name)
		switch {
		case strings.Contains(name, "vip"):
			if vipID == "" {
				vipID = tt.TicketTypeID
			}
		case strings.Contains(name, "standard"):
			if standardID == "" {
				standardID = tt.TicketTypeID
			}
		}
	}
	if standardID == "" {
		for _, tt := range types {
			if tt.TicketTypeID != vipID {
				standardID = tt.TicketTypeID
				break
			}
		}
	}
	if vipID == "" && standardID == "" {
		return "", "", status.Invalid("ticket_types", "could not determine ticket types")
	}
	return vipID, standardID, nil
}

// Layout returns the seat grid for an event, using the event's own
// category unless the caller overrides it.
func (s *SeatingService) Layout(ctx context.Context, eventID, category string) (*models.SeatLayout, error) {
	if category == "" {
		event, err := s.store.EventByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		category = event.Category
	}
	return GenerateSeatLayout(category)
}

// SeatPurchaseResult reports a multi-seat purchase seat by seat. Seats
// are added sequentially with no rollback; a failed seat never undoes
// an earlier one.
type SeatPurchaseResult struct {
	Added  []string          `json:"added"`
	Failed map[string]string `json:"failed,omitempty"`
}

// PurchaseSeats adds one quantity-1 cart line per selected seat, VIP or
// standard ticket type according to the seat's row.
func (s *SeatingService) PurchaseSeats(ctx context.Context, token, eventID, category string, selected []string) (*SeatPurchaseResult, error) {
	if len(selected) == 0 {
		return nil, status.Invalid("seats", "at least one seat is required")
	}

	layout, err := s.Layout(ctx, eventID, category)
	if err != nil {
		return nil, err
	}

	types, err := s.store.TicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	vipID, standardID, err := ResolveSeatTicketTypes(types)
	if err != nil {
		return nil, err
	}

	result := &SeatPurchaseResult{Added: []string{}, Failed: map[string]string{}}
	for _, seatID := range selected {
		seat := layout.Find(seatID)
		if seat == nil {
			result.Failed[seatID] = "unknown seat"
			continue
		}

		ticketTypeID := standardID
		if seat.IsVip && vipID != "" {
			ticketTypeID = vipID
		}
		if ticketTypeID == "" {
			result.Failed[seatID] = "no ticket type for seat"
			continue
		}

		_, err := s.cart.AddToCart(ctx, token, models.CartItem{
			TicketTypeID: ticketTypeID,
			Quantity:     1,
		})
		if err != nil {
			result.Failed[seatID] = err.Error()
			continue
		}
		result.Added = append(result.Added, seatID)
	}
	return result, nil
}
