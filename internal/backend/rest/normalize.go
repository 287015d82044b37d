package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

// envelope is the backend response convention: success bodies carry
// {message:"ok", data:...} where data is sometimes an array and
// sometimes a single object; error bodies carry {error:"..."} or
// {message:"error", ...}.
type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(r io.Reader) (*envelope, error) {
	var env envelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("decodeEnvelope: %v: %w", err, status.ErrUnavailable)
	}
	return &env, nil
}

func (e *envelope) ok() bool {
	return e.Error == "" && e.Message != "error"
}

func (e *envelope) errText() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// decodeList unmarshals data into the slice pointed to by out, wrapping
// a single object in a one-element array first. Callers must handle
// both shapes; this is the one place that does.
func (e *envelope) decodeList(out any) error {
	raw := bytes.TrimSpace(e.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '{' {
		wrapped := make([]byte, 0, len(raw)+2)
		wrapped = append(wrapped, '[')
		wrapped = append(wrapped, raw...)
		wrapped = append(wrapped, ']')
		raw = wrapped
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decodeList: %v: %w", err, status.ErrUnavailable)
	}
	return nil
}

// decodeObject unmarshals data into out, unwrapping a one-element array.
func (e *envelope) decodeObject(out any) error {
	raw := bytes.TrimSpace(e.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return status.ErrNotFound
	}
	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decodeObject: %v: %w", err, status.ErrUnavailable)
		}
		if len(items) == 0 {
			return status.ErrNotFound
		}
		raw = items[0]
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decodeObject: %v: %w", err, status.ErrUnavailable)
	}
	return nil
}

// parseWireTime accepts the timestamp spellings seen across backend
// deployments.
func parseWireTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type userPayload struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

func (p userPayload) toDomain() *models.UserSession {
	id := p.UserID
	if id == "" {
		id = p.ID
	}
	role := p.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return &models.UserSession{UserID: id, Email: p.Email, Name: p.Name, Role: role}
}

type cartItemPayload struct {
	CartItemID   string `json:"cart_item_id"`
	ID           string `json:"id"`
	TicketTypeID string `json:"ticket_type_id"`
	UserID       string `json:"user_id"`
	Quantity     int    `json:"quantity"`
	AddedAt      string `json:"added_at"`
}

func (p cartItemPayload) toDomain() models.CartItem {
	id := p.CartItemID
	if id == "" {
		id = p.ID
	}
	return models.CartItem{
		CartItemID:   id,
		TicketTypeID: p.TicketTypeID,
		UserID:       p.UserID,
		Quantity:     p.Quantity,
		AddedAt:      parseWireTime(p.AddedAt),
	}
}

// ticketTypePayload tolerates the id field arriving as either "id" or
// "ticket_type_id".
type ticketTypePayload struct {
	ID                string          `json:"id"`
	TicketTypeID      string          `json:"ticket_type_id"`
	EventID           string          `json:"event_id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
}

func (p ticketTypePayload) toDomain() models.TicketType {
	id := p.TicketTypeID
	if id == "" {
		id = p.ID
	}
	return models.TicketType{
		TicketTypeID:      id,
		EventID:           p.EventID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		AvailableQuantity: p.AvailableQuantity,
	}
}

type eventPayload struct {
	EventID     string          `json:"event_id"`
	ID          string          `json:"id"`
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
	CreatedAt   string          `json:"created_at"`
}

func (p eventPayload) toDomain() models.Event {
	id := p.EventID
	if id == "" {
		id = p.ID
	}
	return models.Event{
		EventID:     id,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Venue:       p.Venue,
		Date:        p.Date,
		Time:        p.Time,
		Price:       p.Price,
		Category:    p.Category,
		Status:      models.NormalizeEventStatus(p.Status),
		Capacity:    p.Capacity,
		CreatedAt:   parseWireTime(p.CreatedAt),
	}
}
