package rest

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
	BaseURL string
	Timeout time.Duration
}

// Client talks to the primary REST backend. All endpoint paths are
// prefixed /api relative to the configured base URL.
type Client struct {
	baseURL string
	hc      *http.Client
}

func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Provider() backend.Provider { return backend.ProviderPrimary }

// do performs one request and returns the decoded envelope. HTTP status
// codes map onto the error taxonomy here so callers only ever see
// internal error kinds.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("restapi: %s %s: marshal: %v", method, path, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("restapi: %s %s: http.NewReq: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := backend.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("restapi: %s %s: http.Do: %v: %w", method, path, err, status.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("restapi: %s %s: %w", method, path, status.ErrAuthRequired)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("restapi: %s %s: %w", method, path, status.ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("restapi: %s %s: %w", method, path, status.ErrDuplicate)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("restapi: %s %s: status %d: %w", method, path, resp.StatusCode, status.ErrUnavailable)
	}

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("restapi: %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 400 || !env.ok() {
		text := env.errText()
		if isDuplicateText(text) {
			return nil, fmt.Errorf("restapi: %s %s: %s: %w", method, path, text, status.ErrDuplicate)
		}
		return nil, fmt.Errorf("restapi: %s %s: %s: %w", method, path, text, status.ErrUnavailable)
	}
	return env, nil
}

// isDuplicateText spots uniqueness violations that older deployments
// report as plain 400s.
func isDuplicateText(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "duplicate") || strings.Contains(s, "already exists")
}

// Auth

func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (*backend.AuthResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/login", creds)
	if err != nil {
		return nil, err
	}
	var p userPayload
	if err := env.decodeObject(&p); err != nil {
		return nil, fmt.Errorf("restapi: login: %w", err)
	}
	return &backend.AuthResult{Session: p.toDomain(), Token: p.Token}, nil
}

func (c *Client) SignUp(ctx context.Context, req models.SignUpRequest) (*backend.AuthResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/signup", req)
	if err != nil {
		return nil, err
	}
	var p userPayload
	if err := env.decodeObject(&p); err != nil {
		return nil, fmt.Errorf("restapi: signup: %w", err)
	}
	return &backend.AuthResult{Session: p.toDomain(), Token: p.Token}, nil
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/logout", map[string]string{"token": token})
	return err
}

// Cart

func (c *Client) CartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/cart/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	var payloads []cartItemPayload
	if err := env.decodeList(&payloads); err != nil {
		return nil, err
	}
	items := make([]models.CartItem, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, p.toDomain())
	}
	return items, nil
}

func (c *Client) CreateCartItem(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/cart", item)
	if err != nil {
		return nil, err
	}
	var p cartItemPayload
	if err := env.decodeObject(&p); err != nil {
		return nil, err
	}
	created := p.toDomain()
	return &created, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, cartItemID string, quantity int) error {
	_, err := c.do(ctx, http.MethodPut, "/api/cart", map[string]any{
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})
	return err
}

func (c *Client) DeleteCartItem(ctx context.Context, cartItemID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/cart", map[string]string{
		"cart_item_id": cartItemID,
	})
	return err
}

func (c *Client) Checkout(ctx context.Context, userID string, cartItemIDs []string) ([]models.CartItem, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/checkout/"+url.PathEscape(userID), map[string]any{
		"cart_item_ids": cartItemIDs,
	})
	if err != nil {
		return nil, err
	}
	var payloads []cartItemPayload
	if err := env.decodeList(&payloads); err != nil {
		return nil, err
	}
	confirmed := make([]models.CartItem, 0, len(payloads))
	for _, p := range payloads {
		confirmed = append(confirmed, p.toDomain())
	}
	return confirmed, nil
}

// Events

func (c *Client) Events(ctx context.Context) ([]models.Event, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/event", nil)
	if err != nil {
		return nil, err
	}
	var payloads []eventPayload
	if err := env.decodeList(&payloads); err != nil {
		return nil, err
	}
	events := make([]models.Event, 0, len(payloads))
	for _, p := range payloads {
		events = append(events, p.toDomain())
	}
	return events, nil
}

func (c *Client) EventByID(ctx context.Context, eventID string) (*models.Event, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/event?event_id="+url.QueryEscape(eventID), nil)
	if err != nil {
		return nil, err
	}
	var p eventPayload
	if err := env.decodeObject(&p); err != nil {
		return nil, err
	}
	ev := p.toDomain()
	return &ev, nil
}

func (c *Client) CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/event", ev)
	if err != nil {
		return nil, err
	}
	var p eventPayload
	if err := env.decodeObject(&p); err != nil {
		return nil, err
	}
	created := p.toDomain()
	return &created, nil
}

func (c *Client) UpdateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/event/update", ev)
	if err != nil {
		return nil, err
	}
	var p eventPayload
	if err := env.decodeObject(&p); err != nil {
		return nil, err
	}
	updated := p.toDomain()
	return &updated, nil
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/event", map[string]string{
		"event_id": eventID,
	})
	return err
}

// Ticket types

func (c *Client) TicketTypes(ctx context.Context) ([]models.TicketType, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/ticket-type", nil)
	if err != nil {
		return nil, err
	}
	return decodeTicketTypes(env)
}

func (c *Client) TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/ticket-type/"+url.PathEscape(eventID), nil)
	if err != nil {
		return nil, err
	}
	return decodeTicketTypes(env)
}

// TicketTypesByIDs is a true batch lookup: one request, deduplicated
// server side by the ids query.
func (c *Client) TicketTypesByIDs(ctx context.Context, ids []string) (map[string]models.TicketType, error) {
	if len(ids) == 0 {
		return map[string]models.TicketType{}, nil
	}
	env, err := c.do(ctx, http.MethodGet, "/api/ticket-type?ids="+url.QueryEscape(strings.Join(ids, ",")), nil)
	if err != nil {
		return nil, err
	}
	types, err := decodeTicketTypes(env)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.TicketType, len(types))
	for _, tt := range types {
		byID[tt.TicketTypeID] = tt
	}
	return byID, nil
}

func decodeTicketTypes(env *envelope) ([]models.TicketType, error) {
	var payloads []ticketTypePayload
	if err := env.decodeList(&payloads); err != nil {
		return nil, err
	}
	types := make([]models.TicketType, 0, len(payloads))
	for _, p := range payloads {
		types = append(types, p.toDomain())
	}
	return types, nil
}
