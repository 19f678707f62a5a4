package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/stock-ledger/internal/identity/domain"
	"github.com/tair/stock-ledger/pkg/auth"
)

// TokenIssuer signs bearer tokens for authenticated users
type TokenIssuer interface {
	GenerateToken(userID uint, username, role string) (string, error)
}

// LoginUserCommand represents the command to login a user
type LoginUserCommand struct {
	Username string
	Password string
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// LoginUserHandler handles user login command
type LoginUserHandler struct {
	repo   domain.UserRepository
	tokens TokenIssuer
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(repo domain.UserRepository, tokens TokenIssuer) *LoginUserHandler {
	return &LoginUserHandler{repo: repo, tokens: tokens}
}

// Handle executes the login user command.
// Unknown users and wrong passwords fail identically.
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginResponse, error) {
	if cmd.Username == "" || cmd.Password == "" {
		return nil, domain.ErrMissingField
	}

	user, err := h.repo.FindByUsername(ctx, cmd.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, cmd.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{Token: token, User: user}, nil
}
