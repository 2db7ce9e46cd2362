package domain

import "time"

// Kafka topics for staff lifecycle events.
const (
	TopicAdminCreated  = "admin.created"
	TopicAdminLoggedIn = "admin.logged_in"
	TopicRoleCreated   = "role.created"
)

// AdminCreatedEvent is emitted after a staff account is created.
type AdminCreatedEvent struct {
	AdminID   uint      `json:"admin_id"`
	Username  string    `json:"username"`
	RoleID    uint      `json:"role_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AdminLoggedInEvent is emitted after a successful login.
type AdminLoggedInEvent struct {
	AdminID   uint      `json:"admin_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// RoleCreatedEvent is emitted after a role is created.
type RoleCreatedEvent struct {
	RoleID    uint      `json:"role_id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}
