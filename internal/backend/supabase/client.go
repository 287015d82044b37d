package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client is the fallback backend over the Supabase PostgREST surface.
// It reads and writes the storefront tables directly; there is no
// further recovery tier behind it.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Provider() backend.Provider { return backend.ProviderSupabase }

// do performs one PostgREST request. Writes ask for the inserted
// representation so callers get server-assigned ids back.
func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("supabase: %s %s: marshal: %v", method, table, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("supabase: %s %s: http.NewReq: %v", method, table, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: %s %s: http.Do: %v: %w", method, table, err, status.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("supabase: %s %s: %w", method, table, status.ErrAuthRequired)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("supabase: %s %s: %w", method, table, status.ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("supabase: %s %s: %w", method, table, status.ErrDuplicate)
	case resp.StatusCode >= 400:
		var pgErr struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&pgErr)
		// 23505 is postgres unique_violation
		if pgErr.Code == "23505" {
			return fmt.Errorf("supabase: %s %s: %s: %w", method, table, pgErr.Message, status.ErrDuplicate)
		}
		return fmt.Errorf("supabase: %s %s: status %d: %s: %w", method, table, resp.StatusCode, pgErr.Message, status.ErrUnavailable)
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("supabase: %s %s: decode: %v: %w", method, table, err, status.ErrUnavailable)
	}
	return nil
}

func eq(field, value string) url.Values {
	q := url.Values{}
	q.Set(field, "eq."+value)
	return q
}

// Cart

func (c *Client) CartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := c.do(ctx, http.MethodGet, "cart_items", eq("user_id", userID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

type cartInsert struct {
	TicketTypeID string    `json:"ticket_type_id"`
	UserID       string    `json:"user_id"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

func (c *Client) CreateCartItem(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	addedAt := item.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	var created []models.CartItem
	err := c.do(ctx, http.MethodPost, "cart_items", nil, cartInsert{
		TicketTypeID: item.TicketTypeID,
		UserID:       item.UserID,
		Quantity:     item.Quantity,
		AddedAt:      addedAt,
	}, &created)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("supabase: cart insert returned no rows: %w", status.ErrUnavailable)
	}
	return &created[0], nil
}

func (c *Client) UpdateCartItem(ctx context.Context, cartItemID string, quantity int) error {
	var updated []models.CartItem
	err := c.do(ctx, http.MethodPatch, "cart_items", eq("cart_item_id", cartItemID),
		map[string]int{"quantity": quantity}, &updated)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return fmt.Errorf("supabase: cart item %s: %w", cartItemID, status.ErrNotFound)
	}
	return nil
}

func (c *Client) DeleteCartItem(ctx context.Context, cartItemID string) error {
	// PostgREST deletes are naturally idempotent: deleting an absent row
	// is a 204.
	return c.do(ctx, http.MethodDelete, "cart_items", eq("cart_item_id", cartItemID), nil, nil)
}

func (c *Client) Checkout(ctx context.Context, userID string, cartItemIDs []string) ([]models.CartItem, error) {
	var confirmed []models.CartItem
	err := c.do(ctx, http.MethodPost, "rpc/checkout", nil, map[string]any{
		"p_user_id":       userID,
		"p_cart_item_ids": cartItemIDs,
	}, &confirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// Events

func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "events", nil, nil, &events); err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Status = models.NormalizeEventStatus(events[i].Status)
	}
	return events, nil
}

func (c *Client) EventByID(ctx context.Context, eventID string) (*models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "events", eq("event_id", eventID), nil, &events); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("supabase: event %s: %w", eventID, status.ErrNotFound)
	}
	ev := events[0]
	ev.Status = models.NormalizeEventStatus(ev.Status)
	return &ev, nil
}

func (c *Client) CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	ev.Status = models.NormalizeEventStatus(ev.Status)
	var created []models.Event
	if err := c.do(ctx, http.MethodPost, "events", nil, ev, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("supabase: event insert returned no rows: %w", status.ErrUnavailable)
	}
	return &created[0], nil
}

func (c *Client) UpdateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	ev.Status = models.NormalizeEventStatus(ev.Status)
	var updated []models.Event
	if err := c.do(ctx, http.MethodPatch, "events", eq("event_id", ev.EventID), ev, &updated); err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("supabase: event %s: %w", ev.EventID, status.ErrNotFound)
	}
	return &updated[0], nil
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, "events", eq("event_id", eventID), nil, nil)
}

// Ticket types

func (c *Client) TicketTypes(ctx context.Context) ([]models.TicketType, error) {
	var types []models.TicketType
	if err := c.do(ctx, http.MethodGet, "ticket_types", nil, nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	var types []models.TicketType
	if err := c.do(ctx, http.MethodGet, "ticket_types", eq("event_id", eventID), nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) TicketTypesByIDs(ctx context.Context, ids []string) (map[string]models.TicketType, error) {
	if len(ids) == 0 {
		return map[string]models.TicketType{}, nil
	}
	q := url.Values{}
	q.Set("ticket_type_id", "in.("+strings.Join(ids, ",")+")")
	var types []models.TicketType
	if err := c.do(ctx, http.MethodGet, "ticket_types", q, nil, &types); err != nil {
		return nil, err
	}
	byID := make(map[string]models.TicketType, len(types))
	for _, tt := range types {
		byID[tt.TicketTypeID] = tt
	}
	return byID, nil
}
