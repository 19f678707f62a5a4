package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/report"
)

// ContributionsQuery represents the query to total usage per actor
type ContributionsQuery struct{}

// ContributionsHandler handles contributions query
type ContributionsHandler struct {
	repo  domain.LedgerRepository
	cache domain.ReportCache
}

// NewContributionsHandler creates a new contributions handler
func NewContributionsHandler(repo domain.LedgerRepository, cache domain.ReportCache) *ContributionsHandler {
	return &ContributionsHandler{repo: repo, cache: cache}
}

// Handle executes the contributions query
func (h *ContributionsHandler) Handle(ctx context.Context, _ ContributionsQuery) (map[string]int, error) {
	return readThrough(ctx, h.cache, "contributions", func() (map[string]int, error) {
		entries, err := h.repo.ListEntries(ctx)
		if err != nil {
			return nil, err
		}
		return report.ContributionsByActor(entries), nil
	})
}
