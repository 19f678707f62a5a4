package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	identity "github.com/tair/stock-ledger/internal/identity/domain"
	identitycmd "github.com/tair/stock-ledger/internal/identity/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
	"github.com/tair/stock-ledger/pkg/auth"
	"github.com/tair/stock-ledger/pkg/logger"
)

// TokenValidator resolves a bearer token to its claims
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Pinger reports whether the backing store answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// LedgerHandler handles HTTP requests for the stock ledger
type LedgerHandler struct {
	commands *command.Handlers
	queries  *query.Handlers
	users    *identitycmd.Handlers
	tokens   TokenValidator
	guard    domain.RequestGuard
	store    Pinger
}

// NewLedgerHandler creates a new ledger handler. guard may be nil, which disables Idempotency-Key support.
func NewLedgerHandler(
	commands *command.Handlers,
	queries *query.Handlers,
	users *identitycmd.Handlers,
	tokens TokenValidator,
	guard domain.RequestGuard,
	store Pinger,
) *LedgerHandler {
	return &LedgerHandler{
		commands: commands,
		queries:  queries,
		users:    users,
		tokens:   tokens,
		guard:    guard,
		store:    store,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/login", instrument("login", h.Login)).Methods("POST")
	router.HandleFunc("/api/auth/register", instrument("register", h.requireAdmin(h.Register))).Methods("POST")

	router.HandleFunc("/api/items", instrument("list_items", h.requireAuth(h.ListItems))).Methods("GET")
	router.HandleFunc("/api/items", instrument("create_item", h.requireAuth(h.CreateItem))).Methods("POST")
	router.HandleFunc("/api/items/{name}/usage", instrument("log_usage", h.requireAuth(h.LogUsage))).Methods("POST")
	router.HandleFunc("/api/items/{name}/restock", instrument("restock", h.requireAuth(h.Restock))).Methods("POST")

	router.HandleFunc("/api/ledger", instrument("ledger", h.requireAdmin(h.Ledger))).Methods("GET")
	router.HandleFunc("/api/reports/most-used", instrument("most_used", h.requireAuth(h.MostUsed))).Methods("GET")
	router.HandleFunc("/api/reports/employee-contributions", instrument("contributions", h.requireAuth(h.Contributions))).Methods("GET")
	router.HandleFunc("/api/reports/usage-trends", instrument("usage_trends", h.requireAuth(h.UsageTrends))).Methods("GET")
	router.HandleFunc("/api/admin/reconcile", instrument("reconcile", h.requireAdmin(h.Reconcile))).Methods("GET")

	router.HandleFunc("/api/export/catalog.csv", instrument("export_catalog", h.requireAdmin(h.ExportCatalog))).Methods("GET")
	router.HandleFunc("/api/export/ledger.csv", instrument("export_ledger", h.requireAdmin(h.ExportLedger))).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *LedgerHandler) RegisterHealthCheck(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			logger.Warn(r.Context()).Err(err).Msg("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Storage unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Stock ledger is healthy",
		})
	}).Methods("GET")
}

// statusFor maps domain failures onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDuplicateItem),
		errors.Is(err, identity.ErrUsernameTaken),
		errors.Is(err, errDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, identity.ErrMissingField),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err in the envelope. Server faults are logged and hidden from the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
		message = "Internal server error"
	case http.StatusServiceUnavailable:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Storage unavailable")
		message = domain.ErrStorageUnavailable.Error()
	}

	respondJSON(w, status, Response{Success: false, Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
