package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/pkg/logger"
)

// StockRequestDispatcher routes stock requests into the command handlers.
// Each request id is applied at most once.
type StockRequestDispatcher struct {
	usage   *command.LogUsageHandler
	restock *command.RestockHandler
	guard   domain.RequestGuard
}

// NewStockRequestDispatcher creates a dispatcher deduplicating through guard
func NewStockRequestDispatcher(usage *command.LogUsageHandler, restock *command.RestockHandler, guard domain.RequestGuard) *StockRequestDispatcher {
	return &StockRequestDispatcher{usage: usage, restock: restock, guard: guard}
}

// Register binds the dispatcher to both stock request event types
func (d *StockRequestDispatcher) Register(c *Consumer) {
	c.RegisterHandler(EventTypeUsageRequested, d.HandleUsage)
	c.RegisterHandler(EventTypeRestockRequested, d.HandleRestock)
}

func (d *StockRequestDispatcher) HandleUsage(ctx context.Context, req StockRequest) error {
	first, err := d.claim(ctx, req)
	if err != nil || !first {
		return err
	}

	_, err = d.usage.Handle(ctx, command.LogUsageCommand{
		ItemName: req.ItemName,
		Quantity: req.Quantity,
		Actor:    req.Actor,
	})
	return d.settle(ctx, req, err)
}

func (d *StockRequestDispatcher) HandleRestock(ctx context.Context, req StockRequest) error {
	first, err := d.claim(ctx, req)
	if err != nil || !first {
		return err
	}

	_, err = d.restock.Handle(ctx, command.RestockCommand{
		ItemName: req.ItemName,
		Quantity: req.Quantity,
		Actor:    req.Actor,
	})
	return d.settle(ctx, req, err)
}

func (d *StockRequestDispatcher) claim(ctx context.Context, req StockRequest) (bool, error) {
	if req.RequestID == "" {
		return false, fmt.Errorf("%w: request_id is required", domain.ErrInvalidInput)
	}
	if d.guard == nil {
		return true, nil
	}

	first, err := d.guard.Claim(ctx, req.RequestID)
	if err != nil {
		return false, fmt.Errorf("%w: claim request %s: %v", domain.ErrStorageUnavailable, req.RequestID, err)
	}
	if !first {
		logger.Info(ctx).Str("request_id", req.RequestID).Msg("Duplicate stock request skipped")
	}
	return first, nil
}

// settle releases the claim when the command failed on storage, so a
// redelivered request is applied once the backend recovers. Caller errors
// keep the claim since retrying cannot succeed.
func (d *StockRequestDispatcher) settle(ctx context.Context, req StockRequest, err error) error {
	if err == nil || d.guard == nil || !errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	if releaseErr := d.guard.Release(ctx, req.RequestID); releaseErr != nil {
		logger.Warn(ctx).Err(releaseErr).Str("request_id", req.RequestID).Msg("Stock request claim release failed")
	}
	return err
}
