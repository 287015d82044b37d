package services

import (
	"context"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

// stubStore lets each test script only the Store methods it exercises;
// everything else reports unavailable.
type stubStore struct {
	signInFn             func(ctx context.Context, creds models.Credentials) (*backend.AuthResult, error)
	signUpFn             func(ctx context.Context, req models.SignUpRequest) (*backend.AuthResult, error)
	signOutFn            func(ctx context.Context, token string) error
	cartItemsFn          func(ctx context.Context, userID string) ([]models.CartItem, error)
	createCartItemFn     func(ctx context.Context, item models.CartItem) (*models.CartItem, error)
	updateCartItemFn     func(ctx context.Context, cartItemID string, quantity int) error
	deleteCartItemFn     func(ctx context.Context, cartItemID string) error
	checkoutFn           func(ctx context.Context, userID string, cartItemIDs []string) ([]models.CartItem, error)
	eventsFn             func(ctx context.Context) ([]models.Event, error)
	eventByIDFn          func(ctx context.Context, eventID string) (*models.Event, error)
	createEventFn        func(ctx context.Context, ev models.Event) (*models.Event, error)
	updateEventFn        func(ctx context.Context, ev models.Event) (*models.Event, error)
	deleteEventFn        func(ctx context.Context, eventID string) error
	ticketTypesFn        func(ctx context.Context) ([]models.TicketType, error)
	ticketTypesByEventFn func(ctx context.Context, eventID string) ([]models.TicketType, error)
	ticketTypesByIDsFn   func(ctx context.Context, ids []string) (map[string]models.TicketType, error)
}

func (s *stubStore) Provider() backend.Provider { return backend.ProviderPrimary }

func (s *stubStore) SignIn(ctx context.Context, creds models.Credentials) (*backend.AuthResult, error) {
	if s.signInFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.signInFn(ctx, creds)
}

func (s *stubStore) SignUp(ctx context.Context, req models.SignUpRequest) (*backend.AuthResult, error) {
	if s.signUpFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.signUpFn(ctx, req)
}

func (s *stubStore) SignOut(ctx context.Context, token string) error {
	if s.signOutFn == nil {
		return nil
	}
	return s.signOutFn(ctx, token)
}

func (s *stubStore) CartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	if s.cartItemsFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.cartItemsFn(ctx, userID)
}

func (s *stubStore) CreateCartItem(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	if s.createCartItemFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.createCartItemFn(ctx, item)
}

func (s *stubStore) UpdateCartItem(ctx context.Context, cartItemID string, quantity int) error {
	if s.updateCartItemFn == nil {
		return status.ErrUnavailable
	}
	return s.updateCartItemFn(ctx, cartItemID, quantity)
}

func (s *stubStore) DeleteCartItem(ctx context.Context, cartItemID string) error {
	if s.deleteCartItemFn == nil {
		return status.ErrUnavailable
	}
	return s.deleteCartItemFn(ctx, cartItemID)
}

func (s *stubStore) Checkout(ctx context.Context, userID string, cartItemIDs []string) ([]models.CartItem, error) {
	if s.checkoutFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.checkoutFn(ctx, userID, cartItemIDs)
}

func (s *stubStore) Events(ctx context.Context) ([]models.Event, error) {
	if s.eventsFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.eventsFn(ctx)
}

func (s *stubStore) EventByID(ctx context.Context, eventID string) (*models.Event, error) {
	if s.eventByIDFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.eventByIDFn(ctx, eventID)
}

func (s *stubStore) CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	if s.createEventFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.createEventFn(ctx, ev)
}

func (s *stubStore) UpdateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	if s.updateEventFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.updateEventFn(ctx, ev)
}

func (s *stubStore) DeleteEvent(ctx context.Context, eventID string) error {
	if s.deleteEventFn == nil {
		return status.ErrUnavailable
	}
	return s.deleteEventFn(ctx, eventID)
}

func (s *stubStore) TicketTypes(ctx context.Context) ([]models.TicketType, error) {
	if s.ticketTypesFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.ticketTypesFn(ctx)
}

func (s *stubStore) TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	if s.ticketTypesByEventFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.ticketTypesByEventFn(ctx, eventID)
}

func (s *stubStore) TicketTypesByIDs(ctx context.Context, ids []string) (map[string]models.TicketType, error) {
	if s.ticketTypesByIDsFn == nil {
		return nil, status.ErrUnavailable
	}
	return s.ticketTypesByIDsFn(ctx, ids)
}

// stubSessions is a fixed-session SessionSource.
type stubSessions struct {
	session      *models.UserSession
	forcedLogout bool
}

func (s *stubSessions) CurrentUser(ctx context.Context, token string) (*models.UserSession, error) {
	if token == "" || s.session == nil {
		return nil, status.ErrAuthRequired
	}
	return s.session, nil
}

func (s *stubSessions) ForceLogout(ctx context.Context, userID string) error {
	s.forcedLogout = true
	return nil
}
