package command

import "github.com/tair/stock-ledger/internal/ledger/domain"

// Handlers groups every ledger mutation
type Handlers struct {
	CreateItem *CreateItemHandler
	LogUsage   *LogUsageHandler
	Restock    *RestockHandler
}

// NewHandlers builds the mutation handlers over one repository
func NewHandlers(repo domain.LedgerRepository, publisher domain.EntryPublisher, cache domain.ReportCache) *Handlers {
	return &Handlers{
		CreateItem: NewCreateItemHandler(repo, publisher, cache),
		LogUsage:   NewLogUsageHandler(repo, publisher, cache),
		Restock:    NewRestockHandler(repo, publisher, cache),
	}
}
