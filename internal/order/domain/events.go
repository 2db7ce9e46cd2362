package domain

import (
	"time"
)

// Kafka topics for order lifecycle events.
const (
	TopicOrderCreated = "order.created"
	TopicOrderUpdated = "order.updated"
	TopicOrderDeleted = "order.deleted"
)

// OrderCreatedEvent is emitted after an order is persisted.
type OrderCreatedEvent struct {
	OrderID   uint      `json:"order_id"`
	UserID    uint      `json:"user_id"`
	ItemCount int64     `json:"item_count"`
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderUpdatedEvent is emitted after an order or its line items change.
type OrderUpdatedEvent struct {
	OrderID   uint      `json:"order_id"`
	UserID    uint      `json:"user_id"`
	ItemCount int64     `json:"item_count"`
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderDeletedEvent is emitted after an order and its line items are removed.
type OrderDeletedEvent struct {
	OrderID   uint      `json:"order_id"`
	UserID    uint      `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
