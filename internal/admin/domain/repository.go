package domain

import "context"

type AdminRepository interface {
	Save(ctx context.Context, admin *Admin) error
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByID(ctx context.Context, id uint) (*Admin, error)
	List(ctx context.Context, offset, limit int) ([]*Admin, int64, error)
	Delete(ctx context.Context, id uint) error
}

type RoleRepository interface {
	Save(ctx context.Context, role *Role) error
	GetByName(ctx context.Context, name string) (*Role, error)
	GetByID(ctx context.Context, id uint) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
}

// SessionRepository stores login sessions keyed by their id, expiring them
// server-side.
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// EventPublisher broadcasts staff lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}
