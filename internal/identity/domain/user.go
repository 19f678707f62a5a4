package domain

import (
	"context"
	"errors"
	"time"
)

// Role types
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrMissingField       = errors.New("username and password are required")
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 8

// User is an account that can authenticate against the ledger
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"size:16;not null;default:'employee'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one the ledger knows
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	// Create returns ErrUsernameTaken if the username exists
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}
