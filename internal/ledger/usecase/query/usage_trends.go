package query

import (
	"context"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/report"
)

// UsageTrendsQuery represents the query to bucket usage by calendar date.
// Location decides where a day starts; nil uses the handler default.
type UsageTrendsQuery struct {
	Location *time.Location
}

// UsageTrendsHandler handles usage trends query
type UsageTrendsHandler struct {
	repo     domain.LedgerRepository
	cache    domain.ReportCache
	location *time.Location
}

// NewUsageTrendsHandler creates a new usage trends handler bucketing days in location
func NewUsageTrendsHandler(repo domain.LedgerRepository, cache domain.ReportCache, location *time.Location) *UsageTrendsHandler {
	if location == nil {
		location = time.Local
	}
	return &UsageTrendsHandler{repo: repo, cache: cache, location: location}
}

// Handle returns item -> date -> units used
func (h *UsageTrendsHandler) Handle(ctx context.Context, query UsageTrendsQuery) (map[string]map[string]int, error) {
	loc := query.Location
	if loc == nil {
		loc = h.location
	}

	return readThrough(ctx, h.cache, "usage_trends:"+loc.String(), func() (map[string]map[string]int, error) {
		entries, err := h.repo.ListEntries(ctx)
		if err != nil {
			return nil, err
		}
		return report.UsageTrends(entries, loc), nil
	})
}
