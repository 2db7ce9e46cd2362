// Package domain contains the staff accounts and roles that guard the
// back office.
package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrAdminNotFound is returned when a staff account does not exist.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrRoleNotFound is returned when a role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrAdminExists is returned when the staff username is already in use.
	ErrAdminExists = errors.New("admin username already exists")
	// ErrRoleExists is returned when the role name is already in use.
	ErrRoleExists = errors.New("role name already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Permission strings checked by the route gates. PermAll grants everything.
const (
	PermAll          = "*"
	PermOrdersView   = "orders.view"
	PermAdminsManage = "admins.manage"
)

// Admin is a staff account that can sign in to the back office.
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	RoleID       uint      `gorm:"column:role_id;not null" json:"role_id"`
	Role         Role      `gorm:"foreignKey:RoleID" json:"role"`
}

func (Admin) TableName() string {
	return "admins"
}

// Role names a permission set. Permissions is a JSON string array.
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
	Permissions string    `gorm:"column:permissions;type:json" json:"permissions"`
}

func (Role) TableName() string {
	return "roles"
}

func NewAdmin(username, passwordHash string, roleID uint) *Admin {
	return &Admin{
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       roleID,
	}
}

func NewRole(name string, permissions []string) (*Role, error) {
	encoded, err := json.Marshal(permissions)
	if err != nil {
		return nil, err
	}
	return &Role{Name: name, Permissions: string(encoded)}, nil
}

// PermissionList decodes the stored permission array. A malformed or empty
// value decodes to no permissions.
func (r *Role) PermissionList() []string {
	if r.Permissions == "" {
		return nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(r.Permissions), &perms); err != nil {
		return nil
	}
	return perms
}

// Allows reports whether the role grants the permission, either directly
// or through the wildcard.
func (r *Role) Allows(permission string) bool {
	for _, p := range r.PermissionList() {
		if p == PermAll || p == permission {
			return true
		}
	}
	return false
}
