package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// CreateItemCommand represents the command to add an item to the catalog
type CreateItemCommand struct {
	Name         string
	InitialStock int
	Category     string
	Actor        string
}

// CreateItemHandler handles create item command
type CreateItemHandler struct {
	repo domain.LedgerRepository
	committer
}

// NewCreateItemHandler creates a new create item handler.
// publisher and cache may be nil.
func NewCreateItemHandler(repo domain.LedgerRepository, publisher domain.EntryPublisher, cache domain.ReportCache) *CreateItemHandler {
	return &CreateItemHandler{repo: repo, committer: committer{publisher: publisher, cache: cache}}
}

// Handle executes the create item command
func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*domain.StockItem, error) {
	item, entry, err := h.handle(ctx, cmd)
	if err != nil {
		rejected(domain.ActionItemCreated, err)
		return nil, err
	}

	h.committed(ctx, *entry)
	return item, nil
}

func (h *CreateItemHandler) handle(ctx context.Context, cmd CreateItemCommand) (*domain.StockItem, *domain.LedgerEntry, error) {
	name, err := itemName(cmd.Name)
	if err != nil {
		return nil, nil, err
	}
	if cmd.InitialStock < 1 {
		return nil, nil, fmt.Errorf("%w: initial stock for %q must be at least 1", domain.ErrInvalidQuantity, name)
	}

	category := strings.TrimSpace(cmd.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	item := &domain.StockItem{
		Name:       name,
		Category:   category,
		TotalStock: cmd.InitialStock,
	}
	entry := &domain.LedgerEntry{
		EventID:  uuid.NewString(),
		Actor:    cmd.Actor,
		ItemName: name,
		Quantity: cmd.InitialStock,
		Action:   domain.ActionItemCreated,
	}

	if err := h.repo.CreateItem(ctx, item, entry); err != nil {
		return nil, nil, err
	}
	return item, entry, nil
}

// itemName normalizes a caller supplied item name. Every command resolves names this way.
func itemName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: item name is required", domain.ErrInvalidInput)
	}
	return name, nil
}
