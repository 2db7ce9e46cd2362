package domain

import (
	"context"
	"time"
)

// SalesTotals aggregates the ledger for reporting. Revenue is derived from
// current product prices at query time.
type SalesTotals struct {
	Orders  int64
	Items   int64
	Revenue int64
}

// OrderRepository persists orders and their line items.
type OrderRepository interface {
	// Save inserts or updates an order.
	Save(ctx context.Context, order *Order) error
	// GetByID loads an order with its user and its items' products.
	GetByID(ctx context.Context, id uint) (*Order, error)
	// List returns orders newest first, optionally filtered by user.
	// userID zero means all users.
	List(ctx context.Context, userID uint, offset, limit int) ([]*Order, int64, error)
	// Delete removes an order and its line items.
	Delete(ctx context.Context, id uint) error

	// CreateItem appends a line item to an existing order.
	CreateItem(ctx context.Context, item *OrderItem) error
	// GetItem loads a line item with its product.
	GetItem(ctx context.Context, id uint) (*OrderItem, error)
	// SaveItem updates a line item.
	SaveItem(ctx context.Context, item *OrderItem) error
	// DeleteItem removes a single line item.
	DeleteItem(ctx context.Context, id uint) error
	// ReplaceItems swaps an order's line items atomically.
	ReplaceItems(ctx context.Context, orderID uint, items []*OrderItem) error
	// ListItems returns line items across all orders, newest first.
	ListItems(ctx context.Context, offset, limit int) ([]*OrderItem, int64, error)

	// SalesTotals aggregates order count, item quantity and revenue,
	// optionally bounded to a created-at window (zero times are open ends).
	SalesTotals(ctx context.Context, from, to time.Time) (*SalesTotals, error)
}
