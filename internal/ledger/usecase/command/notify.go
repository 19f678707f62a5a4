package command

import (
	"context"
	"errors"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// committer runs the side effects that follow a committed mutation.
// Failures here never undo the mutation; they are logged.
type committer struct {
	publisher domain.EntryPublisher
	cache     domain.ReportCache
}

func (c committer) committed(ctx context.Context, entry domain.LedgerEntry) {
	mutationsTotal.WithLabelValues(string(entry.Action)).Inc()
	mutationQuantity.WithLabelValues(string(entry.Action)).Add(float64(entry.Quantity))

	if c.cache != nil {
		if err := c.cache.InvalidateReports(ctx); err != nil {
			logger.Warn(ctx).Err(err).Str("event_id", entry.EventID).Msg("Failed to invalidate report cache")
		}
	}

	if c.publisher != nil {
		if err := c.publisher.PublishEntry(ctx, entry); err != nil {
			logger.Error(ctx).Err(err).
				Str("event_id", entry.EventID).
				Str("item_name", entry.ItemName).
				Msg("Failed to publish ledger entry")
		}
	}
}

func rejected(action domain.Action, err error) {
	rejectionsTotal.WithLabelValues(string(action), reason(err)).Inc()
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateItem):
		return "duplicate_item"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "unknown"
	}
}
