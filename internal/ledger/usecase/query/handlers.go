package query

import (
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// Handlers groups every ledger read
type Handlers struct {
	Catalog       *GetCatalogHandler
	Ledger        *GetLedgerHandler
	MostUsed      *MostUsedHandler
	Contributions *ContributionsHandler
	UsageTrends   *UsageTrendsHandler
	Reconcile     *ReconcileHandler
}

// NewHandlers builds the read handlers; location is the default report timezone
func NewHandlers(repo domain.LedgerRepository, cache domain.ReportCache, location *time.Location) *Handlers {
	return &Handlers{
		Catalog:       NewGetCatalogHandler(repo),
		Ledger:        NewGetLedgerHandler(repo),
		MostUsed:      NewMostUsedHandler(repo, cache),
		Contributions: NewContributionsHandler(repo, cache),
		UsageTrends:   NewUsageTrendsHandler(repo, cache, location),
		Reconcile:     NewReconcileHandler(repo),
	}
}
