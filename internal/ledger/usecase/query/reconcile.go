package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/report"
)

// ReconcileQuery represents the query to check the catalog against a ledger replay
type ReconcileQuery struct{}

// ReconcileHandler handles reconcile query
type ReconcileHandler struct {
	repo domain.LedgerRepository
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(repo domain.LedgerRepository) *ReconcileHandler {
	return &ReconcileHandler{repo: repo}
}

// Handle executes the reconcile query.
// Both snapshots are read outside any lock, so a concurrent mutation can show as transient drift.
func (h *ReconcileHandler) Handle(ctx context.Context, _ ReconcileQuery) (*report.Reconciliation, error) {
	items, err := h.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := h.repo.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	result := report.Reconcile(items, entries)
	return &result, nil
}
