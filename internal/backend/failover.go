package backend

import (
	"context"
	"sync"
	"time"

	"ticket-storefront/models"
)

// ConnectionState tracks which backend calls are routed to.
type ConnectionState int

const (
	StatePrimary ConnectionState = iota
	StateFallback
)

func (s ConnectionState) String() string {
	if s == StateFallback {
		return "fallback"
	}
	return "primary"
}

// Manager holds the process-wide primary/fallback routing decision.
// It is injected into the service layer rather than held as a package
// singleton so tests can instantiate independent instances. Single
// writer via HandleFailure/Reset, read by every wrapped call.
type Manager struct {
	mu            sync.RWMutex
	state         ConnectionState
	lastError     error
	lastCheckedAt time.Time

	// OnSwitch, when set, is invoked outside the lock after every state
	// transition (primary->fallback and reset).
	OnSwitch func(to ConnectionState, cause error)
}

func NewManager() *Manager {
	return &Manager{state: StatePrimary}
}

func (m *Manager) State() ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the error that caused the current fallback state and
// when it was recorded.
func (m *Manager) LastError() (error, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError, m.lastCheckedAt
}

// HandleFailure records err and switches to the fallback backend.
// Idempotent when already on fallback.
func (m *Manager) HandleFailure(err error) {
	m.mu.Lock()
	m.lastError = err
	m.lastCheckedAt = time.Now()
	switched := m.state == StatePrimary
	m.state = StateFallback
	m.mu.Unlock()

	if switched && m.OnSwitch != nil {
		m.OnSwitch(StateFallback, err)
	}
}

// Reset forces routing back to the primary backend and clears the
// recorded error.
func (m *Manager) Reset() {
	m.mu.Lock()
	switched := m.state == StateFallback
	m.state = StatePrimary
	m.lastError = nil
	m.lastCheckedAt = time.Now()
	m.mu.Unlock()

	if switched && m.OnSwitch != nil {
		m.OnSwitch(StatePrimary, nil)
	}
}

// Call routes one operation through the manager. On primary it runs
// primaryFn; any failure records the error and re-enters with the
// now-fallback state, so the same call gets exactly one fallback
// attempt with the same arguments. On fallback it runs fallbackFn
// directly and its error propagates unmodified; there is no third tier.
func Call[T any](ctx context.Context, m *Manager, primaryFn, fallbackFn func(context.Context) (T, error)) (T, error) {
	if m.State() == StateFallback {
		return fallbackFn(ctx)
	}

	out, err := primaryFn(ctx)
	if err == nil {
		return out, nil
	}

	m.HandleFailure(err)
	return Call(ctx, m, primaryFn, fallbackFn)
}

// Failover is a Store that routes every operation through a Manager,
// failing over from the primary backend to the Supabase fallback.
type Failover struct {
	mgr      *Manager
	primary  Store
	fallback Store
}

func NewFailover(mgr *Manager, primary, fallback Store) *Failover {
	return &Failover{mgr: mgr, primary: primary, fallback: fallback}
}

func (f *Failover) Manager() *Manager { return f.mgr }

func (f *Failover) Provider() Provider {
	if f.mgr.State() == StateFallback {
		return f.fallback.Provider()
	}
	return f.primary.Provider()
}

func (f *Failover) SignIn(ctx context.Context, creds models.Credentials) (*AuthResult, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) (*AuthResult, error) { return f.primary.SignIn(ctx, creds) },
		func(ctx context.Context) (*AuthResult, error) { return f.fallback.SignIn(ctx, creds) })
}

func (f *Failover) SignUp(ctx context.Context, req models.SignUpRequest) (*AuthResult, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) (*AuthResult, error) { return f.primary.SignUp(ctx, req) },
		func(ctx context.Context) (*AuthResult, error) { return f.fallback.SignUp(ctx, req) })
}

func (f *Failover) SignOut(ctx context.Context, token string) error {
	_, err := Call(ctx, f.mgr,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, f.primary.SignOut(ctx, token) },
		func(ctx context.Context) (struct{}, error) { return struct{}{}, f.fallback.SignOut(ctx, token) })
	return err
}

func (f *Failover) CartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) ([]models.CartItem, error) { return f.primary.CartItems(ctx, userID) },
		func(ctx context.Context) ([]models.CartItem, error) { return f.fallback.CartItems(ctx, userID) })
}

func (f *Failover) CreateCartItem(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) (*models.CartItem, error) { return f.primary.CreateCartItem(ctx, item) },
		func(ctx context.Context) (*models.CartItem, error) { return f.fallback.CreateCartItem(ctx, item) })
}

func (f *Failover) UpdateCartItem(ctx context.Context, cartItemID string, quantity int) error {
	_, err := Call(ctx, f.mgr,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.primary.UpdateCartItem(ctx, cartItemID, quantity)
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.fallback.UpdateCartItem(ctx, cartItemID, quantity)
		})
	return err
}

func (f *Failover) DeleteCartItem(ctx context.Context, cartItemID string) error {
	_, err := Call(ctx, f.mgr,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.primary.DeleteCartItem(ctx, cartItemID)
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.fallback.DeleteCartItem(ctx, cartItemID)
		})
	return err
}

func (f *Failover) Checkout(ctx context.Context, userID string, cartItemIDs []string) ([]models.CartItem, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) ([]models.CartItem, error) {
			return f.primary.Checkout(ctx, userID, cartItemIDs)
		},
		func(ctx context.Context) ([]models.CartItem, error) {
			return f.fallback.Checkout(ctx, userID, cartItemIDs)
		})
}

func (f *Failover) Events(ctx context.Context) ([]models.Event, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) ([]models.Event, error) { return f.primary.Events(ctx) },
		func(ctx context.Context) ([]models.Event, error) { return f.fallback.Events(ctx) })
}

func (f *Failover) EventByID(ctx context.Context, eventID string) (*models.Event, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) (*models.Event, error) { return f.primary.EventByID(ctx, eventID) },
		func(ctx context.Context) (*models.Event, error) { return f.fallback.EventByID(ctx, eventID) })
}

func (f *Failover) CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) (*models.Event, error) { return f.primary.CreateEvent(ctx, ev) },
		func(ctx context.Context) (*models.Event, error) { return f.fallback.CreateEvent(ctx, ev) })
}

func (f *Failover) UpdateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) (*models.Event, error) { return f.primary.UpdateEvent(ctx, ev) },
		func(ctx context.Context) (*models.Event, error) { return f.fallback.UpdateEvent(ctx, ev) })
}

func (f *Failover) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := Call(ctx, f.mgr,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.primary.DeleteEvent(ctx, eventID)
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f.fallback.DeleteEvent(ctx, eventID)
		})
	return err
}

func (f *Failover) TicketTypes(ctx context.Context) ([]models.TicketType, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) ([]models.TicketType, error) { return f.primary.TicketTypes(ctx) },
		func(ctx context.Context) ([]models.TicketType, error) { return f.fallback.TicketTypes(ctx) })
}

func (f *Failover) TicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) ([]models.TicketType, error) {
			return f.primary.TicketTypesByEvent(ctx, eventID)
		},
		func(ctx context.Context) ([]models.TicketType, error) {
			return f.fallback.TicketTypesByEvent(ctx, eventID)
		})
}

func (f *Failover) TicketTypesByIDs(ctx context.Context, ids []string) (map[string]models.TicketType, error) {
	return Call(ctx, f.mgr,
		func(ctx context.Context) (map[string]models.TicketType, error) {
			return f.primary.TicketTypesByIDs(ctx, ids)
		},
		func(ctx context.Context) (map[string]models.TicketType, error) {
			return f.fallback.TicketTypesByIDs(ctx, ids)
		})
}
