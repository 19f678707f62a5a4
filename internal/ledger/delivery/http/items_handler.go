package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
	"github.com/tair/stock-ledger/pkg/logger"
)

var errDuplicateRequest = errors.New("duplicate request")

// ListItems handles GET /api/items
func (h *LedgerHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.Catalog.Handle(r.Context(), query.GetCatalogQuery{
		GroupByCategory: r.URL.Query().Get("group") == "category",
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	var data interface{} = view.Items
	if view.Groups != nil {
		data = view.Groups
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// CreateItem handles POST /api/items
func (h *LedgerHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var name, category, rawStock string
	if isForm(r) {
		name, category, rawStock = r.FormValue("name"), r.FormValue("category"), r.FormValue("stock")
	} else {
		var req struct {
			Name     string          `json:"name"`
			Stock    json.RawMessage `json:"stock"`
			Category string          `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
			return
		}
		name, category, rawStock = req.Name, req.Category, rawNumber(req.Stock)
	}

	stock, err := parseQuantity(rawStock)
	if err != nil {
		respondError(w, r, err)
		return
	}

	caller, _ := PrincipalFromContext(r.Context())
	item, err := h.commands.CreateItem.Handle(r.Context(), command.CreateItemCommand{
		Name:         name,
		InitialStock: stock,
		Category:     category,
		Actor:        caller.Username,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info(r.Context()).
		Str("item_name", item.Name).
		Int("stock", item.TotalStock).
		Str("actor", caller.Username).
		Msg("Item created")

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: fmt.Sprintf("Item %s added", item.Name),
		Data:    item,
	})
}

// LogUsage handles POST /api/items/{name}/usage
func (h *LedgerHandler) LogUsage(w http.ResponseWriter, r *http.Request) {
	name, qty, ok := h.mutationRequest(w, r)
	if !ok {
		return
	}

	caller, _ := PrincipalFromContext(r.Context())
	result, err := h.commands.LogUsage.Handle(r.Context(), command.LogUsageCommand{
		ItemName: name,
		Quantity: qty,
		Actor:    caller.Username,
	})
	if err != nil {
		h.releaseClaim(r, err)
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Logged usage of %d %s", qty, name),
		Data:    result,
	})
}

// Restock handles POST /api/items/{name}/restock
func (h *LedgerHandler) Restock(w http.ResponseWriter, r *http.Request) {
	name, qty, ok := h.mutationRequest(w, r)
	if !ok {
		return
	}

	caller, _ := PrincipalFromContext(r.Context())
	result, err := h.commands.Restock.Handle(r.Context(), command.RestockCommand{
		ItemName: name,
		Quantity: qty,
		Actor:    caller.Username,
	})
	if err != nil {
		h.releaseClaim(r, err)
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Restocked %s by %d", name, qty),
		Data:    result,
	})
}

// mutationRequest reads the item name and quantity and claims the Idempotency-Key if one is sent.
// It writes the error response itself and returns ok=false when the request must stop.
func (h *LedgerHandler) mutationRequest(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	name := mux.Vars(r)["name"]

	var raw string
	if isForm(r) {
		raw = r.FormValue("quantity")
	} else {
		var req struct {
			Quantity json.RawMessage `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
			return "", 0, false
		}
		raw = rawNumber(req.Quantity)
	}

	qty, err := parseQuantity(raw)
	if err != nil {
		respondError(w, r, err)
		return "", 0, false
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" && h.guard != nil {
		caller, _ := PrincipalFromContext(r.Context())
		first, err := h.guard.Claim(r.Context(), caller.Username+":"+key)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
			return "", 0, false
		}
		if !first {
			respondError(w, r, fmt.Errorf("%w: Idempotency-Key %q was already used", errDuplicateRequest, key))
			return "", 0, false
		}
	}

	return name, qty, true
}

// releaseClaim frees the Idempotency-Key after a storage fault so the client can retry
func (h *LedgerHandler) releaseClaim(r *http.Request, err error) {
	key := r.Header.Get("Idempotency-Key")
	if key == "" || h.guard == nil || !errors.Is(err, domain.ErrStorageUnavailable) {
		return
	}
	caller, _ := PrincipalFromContext(r.Context())
	if releaseErr := h.guard.Release(r.Context(), caller.Username+":"+key); releaseErr != nil {
		logger.Warn(r.Context()).Err(releaseErr).Str("idempotency_key", key).Msg("Idempotency-Key release failed")
	}
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

// rawNumber unwraps a JSON number or numeric string into its text
func rawNumber(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// parseQuantity accepts whole numbers only. Range checks belong to the command handlers.
func parseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", domain.ErrInvalidQuantity, raw)
	}
	return n, nil
}
