package domain

import (
	"time"
)

// Kafka topics for user lifecycle events.
const (
	TopicUserCreated = "user.created"
	TopicUserUpdated = "user.updated"
	TopicUserDeleted = "user.deleted"
)

// UserCreatedEvent is emitted after a user is persisted.
type UserCreatedEvent struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UserUpdatedEvent is emitted after a user's details change.
type UserUpdatedEvent struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UserDeletedEvent is emitted after a user and their orders are removed.
type UserDeletedEvent struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}
