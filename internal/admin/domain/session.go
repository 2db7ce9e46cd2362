package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSessionNotFound is returned when no server-side session backs
	// the presented token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when the session has outlived its TTL.
	ErrSessionExpired = errors.New("session expired")
)

// Session is the server-side record behind an issued token. The permission
// snapshot is taken at login; role edits apply from the next login on.
type Session struct {
	ID          string    `json:"id"`
	AdminID     uint      `json:"admin_id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Allows reports whether the session grants the permission.
func (s *Session) Allows(permission string) bool {
	for _, p := range s.Permissions {
		if p == PermAll || p == permission {
			return true
		}
	}
	return false
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
