package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/stock-ledger/internal/identity/domain"
	"github.com/tair/stock-ledger/pkg/auth"
)

// RegisterUserCommand represents the command to register a new user
type RegisterUserCommand struct {
	Username string
	Password string
	Role     string // Optional, defaults to employee
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*domain.User, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" || cmd.Password == "" {
		return nil, domain.ErrMissingField
	}
	if len(cmd.Password) < domain.MinPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	role := cmd.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	hashed, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := h.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
