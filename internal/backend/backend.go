package backend

import (
	"context"

	"ticket-storefront/models"
)

// Provider identifies which backend a Store talks to.
type Provider string

const (
	ProviderPrimary  Provider = "primary"
	ProviderSupabase Provider = "supabase"
)

// AuthResult is a successful login or registration: the session record
// plus the bearer token the backend issued for it.
type AuthResult struct {
	Session *models.UserSession `json:"session"`
	Token   string              `json:"token"`
}

// Store is the common contract of the primary REST backend and the
// Supabase fallback. Every method is safe for concurrent use and honors
// the context deadline.
type Store interface {
	// Provider returns the backend provider type.
	Provider() Provider

	// Auth
	SignIn(ctx context.Context, creds models.Credentials) (*AuthResult, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (*AuthResult, error)
	SignOut(ctx context.Context, token string) error

	// Cart
	CartItems(ctx context.Context, userID string) ([]models.CartItem, error)
	CreateCartItem(ctx context.Context, item models.CartItem) (*models.CartItem, error)
	UpdateCartItem(ctx context.Context, cartItemID string, quantity int) error
	DeleteCartItem(ctx context.Context, cartItemID string) error
	Checkout(ctx context.Context, userID string, cartItemIDs []string) ([]models.CartItem, error)

	// Events
	Events(ctx context.Context) ([]models.Event, error)
	EventByID(ctx context.Context, eventID string) (*models.Event, error)
	CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error)
	UpdateEvent(ctx context.Context, ev models.Event) (*models.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error

	// Ticket types
	TicketTypes(ctx context.Context) ([]models.TicketType, error)
	TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error)
	TicketTypesByIDs(ctx context.Context, ids []string) (map[string]models.TicketType, error)
}
