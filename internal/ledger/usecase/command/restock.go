package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// RestockCommand represents the command to provision more units of an item
type RestockCommand struct {
	ItemName string
	Quantity int
	Actor    string
}

// RestockHandler handles restock command
type RestockHandler struct {
	repo domain.LedgerRepository
	committer
}

// NewRestockHandler creates a new restock handler
func NewRestockHandler(repo domain.LedgerRepository, publisher domain.EntryPublisher, cache domain.ReportCache) *RestockHandler {
	return &RestockHandler{repo: repo, committer: committer{publisher: publisher, cache: cache}}
}

// Handle executes the restock command
func (h *RestockHandler) Handle(ctx context.Context, cmd RestockCommand) (*MutationResult, error) {
	name, err := itemName(cmd.ItemName)
	if err == nil && cmd.Quantity < 1 {
		err = fmt.Errorf("%w: got %d for %q", domain.ErrInvalidQuantity, cmd.Quantity, name)
	}
	if err == nil {
		err = h.checkHeadroom(ctx, name, cmd.Quantity)
	}
	if err != nil {
		rejected(domain.ActionRestocked, err)
		return nil, err
	}

	entry := &domain.LedgerEntry{
		EventID:  uuid.NewString(),
		Actor:    cmd.Actor,
		ItemName: name,
		Quantity: cmd.Quantity,
		Action:   domain.ActionRestocked,
	}

	item, err := h.repo.ApplyRestock(ctx, entry)
	if err != nil {
		rejected(domain.ActionRestocked, err)
		return nil, err
	}

	h.committed(ctx, *entry)
	return &MutationResult{Entry: *entry, Item: *item}, nil
}

// checkHeadroom rejects restocks that would overflow total stock.
// The repository repeats the check under its lock.
func (h *RestockHandler) checkHeadroom(ctx context.Context, name string, quantity int) error {
	item, err := h.repo.FindItem(ctx, name)
	if err != nil {
		return err
	}
	if !item.CanRestock(quantity) {
		return fmt.Errorf("%w: restocking %q by %d would overflow total stock %d",
			domain.ErrInvalidQuantity, name, quantity, item.TotalStock)
	}
	return nil
}
