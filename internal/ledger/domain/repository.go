package domain

import "context"

// LedgerRepository defines the contract for catalog and ledger persistence.
//
// Every mutating method is a single atomic unit: the check, the catalog update
// and the ledger append either all happen or none do. Implementations assign
// entry.Timestamp at write time and fill in ID.
type LedgerRepository interface {
	// CreateItem inserts item and appends its ItemCreated entry.
	// Returns ErrDuplicateItem if the name is taken.
	CreateItem(ctx context.Context, item *StockItem, entry *LedgerEntry) error

	// ApplyUsage adds entry.Quantity to the item's used count.
	// Returns ErrItemNotFound or ErrInsufficientStock.
	ApplyUsage(ctx context.Context, entry *LedgerEntry) (*StockItem, error)

	// ApplyRestock adds entry.Quantity to the item's total stock.
	// Returns ErrItemNotFound, or ErrInvalidQuantity if the total would overflow.
	ApplyRestock(ctx context.Context, entry *LedgerEntry) (*StockItem, error)

	FindItem(ctx context.Context, name string) (*StockItem, error)

	// ListItems returns the catalog ordered by name
	ListItems(ctx context.Context) ([]StockItem, error)

	// ListEntries returns the full ledger in insertion order
	ListEntries(ctx context.Context) ([]LedgerEntry, error)

	Ping(ctx context.Context) error
}

// EntryPublisher announces committed ledger entries to other systems
type EntryPublisher interface {
	PublishEntry(ctx context.Context, entry LedgerEntry) error
}

// ReportCache stores computed reports between mutations.
// InvalidateReports advances the generation; readers key their reports by the
// generation observed before computing, so a report computed across an
// invalidation is never served.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	GetReport(ctx context.Context, key string, dst interface{}) (bool, error)
	SetReport(ctx context.Context, key string, value interface{}) error
	InvalidateReports(ctx context.Context) error
}

// RequestGuard claims request identities for at-most-once processing
type RequestGuard interface {
	// Claim returns false if key was already claimed
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets a claim so the request can be processed again
	Release(ctx context.Context, key string) error
}
