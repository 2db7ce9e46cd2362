// Package domain contains the customer account model orders are booked
// against.
package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmptyUsername is returned when a username is blank.
	ErrEmptyUsername = errors.New("username must not be empty")
	// ErrUsernameTaken is returned when the username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
)

// User is a customer account. Deleting one removes their orders through
// the foreign key cascade.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"column:username;type:varchar(150);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"column:email;type:varchar(254)" json:"email"`
}

// TableName overrides the gorm table name.
func (User) TableName() string { return "users" }

// NewUser creates a user, rejecting blank usernames.
func NewUser(username, email string) (*User, error) {
	u := &User{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the user invariants.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	return nil
}

// Label renders the user for display.
func (u *User) Label() string { return u.Username }
