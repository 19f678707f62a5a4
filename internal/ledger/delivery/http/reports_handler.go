package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/report"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
)

// Ledger handles GET /api/ledger
func (h *LedgerHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queries.Ledger.Handle(r.Context(), query.GetLedgerQuery{})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: entries})
}

// MostUsed handles GET /api/reports/most-used
func (h *LedgerHandler) MostUsed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: limit %q is not a number", domain.ErrInvalidInput, raw))
			return
		}
		limit = n
	}

	ranking, err := h.queries.MostUsed.Handle(r.Context(), query.MostUsedQuery{Limit: limit})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: ranking})
}

// Contributions handles GET /api/reports/employee-contributions
func (h *LedgerHandler) Contributions(w http.ResponseWriter, r *http.Request) {
	totals, err := h.queries.Contributions.Handle(r.Context(), query.ContributionsQuery{})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: totals})
}

// UsageTrends handles GET /api/reports/usage-trends
func (h *LedgerHandler) UsageTrends(w http.ResponseWriter, r *http.Request) {
	var loc *time.Location
	if tz := r.URL.Query().Get("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: unknown timezone %q", domain.ErrInvalidInput, tz))
			return
		}
		loc = parsed
	}

	trends, err := h.queries.UsageTrends.Handle(r.Context(), query.UsageTrendsQuery{Location: loc})
	if err != nil {
		respondError(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "sparse":
		respondJSON(w, http.StatusOK, Response{Success: true, Data: trends})
	case "matrix":
		respondJSON(w, http.StatusOK, Response{Success: true, Data: report.DenseTrends(trends)})
	default:
		respondError(w, r, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format))
	}
}

// Reconcile handles GET /api/admin/reconcile
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.queries.Reconcile.Handle(r.Context(), query.ReconcileQuery{})
	if err != nil {
		respondError(w, r, err)
		return
	}

	message := "Catalog matches ledger"
	if !result.Consistent {
		message = fmt.Sprintf("%d items drifted from the ledger", len(result.Drifted))
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: result})
}
