package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/report"
)

// MostUsedQuery represents the query to rank items by usage.
// Limit <= 0 returns every item.
type MostUsedQuery struct {
	Limit int
}

// MostUsedHandler handles most used query
type MostUsedHandler struct {
	repo  domain.LedgerRepository
	cache domain.ReportCache
}

// NewMostUsedHandler creates a new most used handler
func NewMostUsedHandler(repo domain.LedgerRepository, cache domain.ReportCache) *MostUsedHandler {
	return &MostUsedHandler{repo: repo, cache: cache}
}

// Handle executes the most used query
func (h *MostUsedHandler) Handle(ctx context.Context, query MostUsedQuery) ([]report.ItemUsage, error) {
	key := fmt.Sprintf("most_used:%d", query.Limit)
	return readThrough(ctx, h.cache, key, func() ([]report.ItemUsage, error) {
		items, err := h.repo.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		return report.MostUsed(items, query.Limit), nil
	})
}
