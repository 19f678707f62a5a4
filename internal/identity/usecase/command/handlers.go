package command

import "github.com/tair/stock-ledger/internal/identity/domain"

// Handlers groups the account commands
type Handlers struct {
	Register    *RegisterUserHandler
	Login       *LoginUserHandler
	EnsureAdmin *EnsureAdminHandler
}

// NewHandlers builds the account handlers over one user repository
func NewHandlers(repo domain.UserRepository, tokens TokenIssuer) *Handlers {
	return &Handlers{
		Register:    NewRegisterUserHandler(repo),
		Login:       NewLoginUserHandler(repo, tokens),
		EnsureAdmin: NewEnsureAdminHandler(repo),
	}
}
