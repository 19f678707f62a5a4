package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// GetLedgerQuery represents the query to read the full ledger
type GetLedgerQuery struct{}

// GetLedgerHandler handles get ledger query
type GetLedgerHandler struct {
	repo domain.LedgerRepository
}

// NewGetLedgerHandler creates a new get ledger handler
func NewGetLedgerHandler(repo domain.LedgerRepository) *GetLedgerHandler {
	return &GetLedgerHandler{repo: repo}
}

// Handle returns every entry in insertion order
func (h *GetLedgerHandler) Handle(ctx context.Context, _ GetLedgerQuery) ([]domain.LedgerEntry, error) {
	return h.repo.ListEntries(ctx)
}
