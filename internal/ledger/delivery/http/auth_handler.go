package http

import (
	"encoding/json"
	"net/http"

	identitycmd "github.com/tair/stock-ledger/internal/identity/usecase/command"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Login handles POST /api/auth/login
func (h *LedgerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	resp, err := h.users.Login.Handle(r.Context(), identitycmd.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		logger.Info(r.Context()).Str("username", req.Username).Msg("Login rejected")
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}

// Register handles POST /api/auth/register
func (h *LedgerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	user, err := h.users.Register.Handle(r.Context(), identitycmd.RegisterUserCommand{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	admin, _ := PrincipalFromContext(r.Context())
	logger.Info(r.Context()).
		Str("username", user.Username).
		Str("role", user.Role).
		Str("registered_by", admin.Username).
		Msg("User registered")

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "User registered successfully",
		Data:    user,
	})
}
