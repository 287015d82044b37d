package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

// OrderService keeps the order history in a local sqlite store. Orders
// are written only after the backend confirms a checkout and are
// immutable afterwards, except for the status transition to CANCELLED
// on refund.
type OrderService struct {
	db *dbx.DB
}

func NewOrderService(path string) (*OrderService, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("orders: mkdir %s: %v", dir, err)
		}
	}

	db, err := dbx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("orders: open %s: %v", path, err)
	}

	s := &OrderService{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *OrderService) ensureSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			order_id     TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			created_at   TEXT NOT NULL,
			total_amount TEXT NOT NULL,
			status       TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id       TEXT NOT NULL REFERENCES orders(order_id),
			ticket_type_id TEXT NOT NULL,
			ticket_name    TEXT NOT NULL,
			event_id       TEXT NOT NULL DEFAULT '',
			event_name     TEXT NOT NULL DEFAULT '',
			quantity       INTEGER NOT NULL,
			unit_price     TEXT NOT NULL,
			line_total     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	}
	for _, q := range queries {
		if _, err := s.db.NewQuery(q).Execute(); err != nil {
			return fmt.Errorf("orders: schema: %v", err)
		}
	}
	return nil
}

func (s *OrderService) Close() error { return s.db.Close() }

type orderRow struct {
	OrderID     string `db:"order_id"`
	UserID      string `db:"user_id"`
	CreatedAt   string `db:"created_at"`
	TotalAmount string `db:"total_amount"`
	Status      string `db:"status"`
}

type orderItemRow struct {
	OrderID      string `db:"order_id"`
	TicketTypeID string `db:"ticket_type_id"`
	TicketName   string `db:"ticket_name"`
	EventID      string `db:"event_id"`
	EventName    string `db:"event_name"`
	Quantity     int    `db:"quantity"`
	UnitPrice    string `db:"unit_price"`
	LineTotal    string `db:"line_total"`
}

// Record writes a confirmed order and its lines in one transaction.
func (s *OrderService) Record(ctx context.Context, order *models.Order) error {
	return s.db.Transactional(func(tx *dbx.Tx) error {
		_, err := tx.Insert("orders", dbx.Params{
			"order_id":     order.OrderID,
			"user_id":      order.UserID,
			"created_at":   order.Date.UTC().Format(time.RFC3339),
			"total_amount": order.TotalAmount.String(),
			"status":       order.Status,
		}).Execute()
		if err != nil {
			return fmt.Errorf("orders: insert %s: %v", order.OrderID, err)
		}

		for _, item := range order.Items {
			_, err := tx.Insert("order_items", dbx.Params{
				"order_id":       order.OrderID,
				"ticket_type_id": item.TicketTypeID,
				"ticket_name":    item.TicketName,
				"event_id":       item.EventID,
				"event_name":     item.EventName,
				"quantity":       item.Quantity,
				"unit_price":     item.UnitPrice.String(),
				"line_total":     item.LineTotal.String(),
			}).Execute()
			if err != nil {
				return fmt.Errorf("orders: insert line %s: %v", order.OrderID, err)
			}
		}
		return nil
	})
}

// OrdersByUser returns the user's orders, newest first, with lines.
func (s *OrderService) OrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.Select("order_id", "user_id", "created_at", "total_amount", "status").
		From("orders").
		Where(dbx.HashExp{"user_id": userID}).
		OrderBy("created_at DESC").
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("orders: list for %s: %v", userID, err)
	}

	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		order, err := s.hydrate(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// OrderByID returns one order with its lines.
func (s *OrderService) OrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	var row orderRow
	err := s.db.Select("order_id", "user_id", "created_at", "total_amount", "status").
		From("orders").
		Where(dbx.HashExp{"order_id": orderID}).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("orders: %s: %w", orderID, status.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("orders: get %s: %v", orderID, err)
	}
	return s.hydrate(row)
}

// Cancel transitions an order to CANCELLED. Cancelling an already
// cancelled order is a no-op; cancelling someone else's order is a
// not-found.
func (s *OrderService) Cancel(ctx context.Context, orderID, userID string) error {
	order, err := s.OrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return fmt.Errorf("orders: %s: %w", orderID, status.ErrNotFound)
	}
	if order.Status == models.OrderCancelled {
		return nil
	}

	_, err = s.db.Update("orders",
		dbx.Params{"status": models.OrderCancelled},
		dbx.HashExp{"order_id": orderID}).Execute()
	if err != nil {
		return fmt.Errorf("orders: cancel %s: %v", orderID, err)
	}
	return nil
}

func (s *OrderService) hydrate(row orderRow) (*models.Order, error) {
	var itemRows []orderItemRow
	err := s.db.Select("order_id", "ticket_type_id", "ticket_name", "event_id", "event_name", "quantity", "unit_price", "line_total").
		From("order_items").
		Where(dbx.HashExp{"order_id": row.OrderID}).
		All(&itemRows)
	if err != nil {
		return nil, fmt.Errorf("orders: lines %s: %v", row.OrderID, err)
	}

	items := make([]models.OrderItem, 0, len(itemRows))
	for _, ir := range itemRows {
		items = append(items, models.OrderItem{
			TicketTypeID: ir.TicketTypeID,
			TicketName:   ir.TicketName,
			EventID:      ir.EventID,
			EventName:    ir.EventName,
			Quantity:     ir.Quantity,
			UnitPrice:    mustDecimal(ir.UnitPrice),
			LineTotal:    mustDecimal(ir.LineTotal),
		})
	}

	date, _ := time.Parse(time.RFC3339, row.CreatedAt)
	return &models.Order{
		OrderID:     row.OrderID,
		UserID:      row.UserID,
		Date:        date,
		Items:       items,
		TotalAmount: mustDecimal(row.TotalAmount),
		Status:      row.Status,
	}, nil
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
