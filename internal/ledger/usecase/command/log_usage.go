package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// LogUsageCommand represents the command to consume units of an item
type LogUsageCommand struct {
	ItemName string
	Quantity int
	Actor    string
}

// MutationResult is the committed entry and the item state it produced
type MutationResult struct {
	Entry domain.LedgerEntry `json:"entry"`
	Item  domain.StockItem   `json:"item"`
}

// LogUsageHandler handles log usage command
type LogUsageHandler struct {
	repo domain.LedgerRepository
	committer
}

// NewLogUsageHandler creates a new log usage handler
func NewLogUsageHandler(repo domain.LedgerRepository, publisher domain.EntryPublisher, cache domain.ReportCache) *LogUsageHandler {
	return &LogUsageHandler{repo: repo, committer: committer{publisher: publisher, cache: cache}}
}

// Handle executes the log usage command
func (h *LogUsageHandler) Handle(ctx context.Context, cmd LogUsageCommand) (*MutationResult, error) {
	name, err := itemName(cmd.ItemName)
	// Negative quantities are never a restock
	if err == nil && cmd.Quantity < 1 {
		err = fmt.Errorf("%w: got %d for %q", domain.ErrInvalidQuantity, cmd.Quantity, name)
	}
	if err != nil {
		rejected(domain.ActionUsageLogged, err)
		return nil, err
	}

	entry := &domain.LedgerEntry{
		EventID:  uuid.NewString(),
		Actor:    cmd.Actor,
		ItemName: name,
		Quantity: cmd.Quantity,
		Action:   domain.ActionUsageLogged,
	}

	item, err := h.repo.ApplyUsage(ctx, entry)
	if err != nil {
		rejected(domain.ActionUsageLogged, err)
		return nil, err
	}

	h.committed(ctx, *entry)
	return &MutationResult{Entry: *entry, Item: *item}, nil
}
