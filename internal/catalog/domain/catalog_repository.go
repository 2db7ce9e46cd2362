package domain

import (
	"context"
	"io"
)

type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, offset, limit int) ([]*Product, int64, error)
	Delete(ctx context.Context, id uint) error
}

// ImageStore persists uploaded product images under opaque keys.
type ImageStore interface {
	// Save stores the image and returns the generated key. The original
	// filename is only used for its extension.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// EventPublisher pushes catalog domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
