package http

import (
	"context"
	"net/http"
	"strings"

	identity "github.com/tair/stock-ledger/internal/identity/domain"
)

type principalKey struct{}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

// PrincipalFromContext returns the caller stored by requireAuth
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// requireAuth validates the bearer token and stores the caller in the request context
func (h *LedgerHandler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Invalid authorization header format"})
			return
		}

		claims, err := h.tokens.ValidateToken(parts[1])
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requireAdmin checks if user has admin role
func (h *LedgerHandler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || p.Role != identity.RoleAdmin {
			respondJSON(w, http.StatusForbidden, Response{Success: false, Error: "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
