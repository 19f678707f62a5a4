package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// readThrough serves key from cache when present, otherwise computes and stores it.
// Cache failures fall back to computing; they are never returned to the caller.
func readThrough[T any](ctx context.Context, cache domain.ReportCache, key string, compute func() (T, error)) (T, error) {
	if cache == nil {
		return compute()
	}

	gen, err := cache.Generation(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("report", key).Msg("Report cache generation read failed")
		return compute()
	}
	key = fmt.Sprintf("%s@%d", key, gen)

	var cached T
	hit, err := cache.GetReport(ctx, key, &cached)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("report", key).Msg("Report cache read failed")
	}
	if hit && err == nil {
		return cached, nil
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	if err := cache.SetReport(ctx, key, value); err != nil {
		logger.Warn(ctx).Err(err).Str("report", key).Msg("Report cache write failed")
	}
	return value, nil
}
