package domain

import "context"

// UserRepository persists customer accounts.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, int64, error)
	Delete(ctx context.Context, id uint) error
}

// EventPublisher broadcasts user lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}
