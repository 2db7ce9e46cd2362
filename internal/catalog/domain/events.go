package domain

import "time"

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
)

type ProductCreatedEvent struct {
	ProductID uint      `json:"product_id"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

type ProductUpdatedEvent struct {
	ProductID uint      `json:"product_id"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Image     string    `json:"image"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductDeletedEvent also signals that dependent order items were removed
// by the cascade.
type ProductDeletedEvent struct {
	ProductID uint      `json:"product_id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}
