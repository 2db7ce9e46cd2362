package domain

import "context"

// EventPublisher broadcasts order lifecycle events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}
