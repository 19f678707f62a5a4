package report

import (
	"sort"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// Drift describes an item whose stored position disagrees with its ledger
type Drift struct {
	ItemName string        `json:"item_name"`
	Stored   domain.Totals `json:"stored"`
	Replayed domain.Totals `json:"replayed"`
}

// Reconciliation is the result of replaying the ledger against the catalog
type Reconciliation struct {
	ItemsChecked   int      `json:"items_checked"`
	EntriesChecked int      `json:"entries_checked"`
	Drifted        []Drift  `json:"drifted"`
	OrphanItems    []string `json:"orphan_items"`
	Consistent     bool     `json:"consistent"`
}

// Reconcile replays entries and compares the result with each item's stored totals.
// OrphanItems lists names that appear in the ledger but not in the catalog.
func Reconcile(items []domain.StockItem, entries []domain.LedgerEntry) Reconciliation {
	replayed := domain.Replay(entries)
	result := Reconciliation{
		ItemsChecked:   len(items),
		EntriesChecked: len(entries),
		Drifted:        make([]Drift, 0),
		OrphanItems:    make([]string, 0),
	}

	known := make(map[string]struct{}, len(items))
	for _, item := range items {
		known[item.Name] = struct{}{}
		stored := domain.Totals{TotalStock: item.TotalStock, Used: item.Used}
		if replayed[item.Name] != stored {
			result.Drifted = append(result.Drifted, Drift{
				ItemName: item.Name,
				Stored:   stored,
				Replayed: replayed[item.Name],
			})
		}
	}

	for name := range replayed {
		if _, ok := known[name]; !ok {
			result.OrphanItems = append(result.OrphanItems, name)
		}
	}
	sort.Strings(result.OrphanItems)
	sort.Slice(result.Drifted, func(i, j int) bool { return result.Drifted[i].ItemName < result.Drifted[j].ItemName })

	result.Consistent = len(result.Drifted) == 0 && len(result.OrphanItems) == 0
	return result
}
