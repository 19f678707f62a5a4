package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/identity/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// EnsureAdminCommand carries the bootstrap admin credentials from configuration
type EnsureAdminCommand struct {
	Username string
	Password string
}

// EnsureAdminHandler creates the first admin when none exists
type EnsureAdminHandler struct {
	repo     domain.UserRepository
	register *RegisterUserHandler
}

// NewEnsureAdminHandler creates a new ensure admin handler
func NewEnsureAdminHandler(repo domain.UserRepository) *EnsureAdminHandler {
	return &EnsureAdminHandler{repo: repo, register: NewRegisterUserHandler(repo)}
}

// Handle returns true if an admin was created.
// It does nothing when credentials are empty or an admin already exists.
func (h *EnsureAdminHandler) Handle(ctx context.Context, cmd EnsureAdminCommand) (bool, error) {
	if cmd.Username == "" || cmd.Password == "" {
		return false, nil
	}

	admins, err := h.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}

	if _, err := h.register.Handle(ctx, RegisterUserCommand{
		Username: cmd.Username,
		Password: cmd.Password,
		Role:     domain.RoleAdmin,
	}); err != nil {
		return false, err
	}

	logger.Info(ctx).Str("username", cmd.Username).Msg("Bootstrap admin created")
	return true, nil
}
