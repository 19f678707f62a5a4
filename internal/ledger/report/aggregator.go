// Package report turns catalog and ledger snapshots into read-only views.
// Nothing here touches storage; every function is pure over its inputs.
package report

import (
	"sort"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// DateLayout is the calendar date key used by usage trends
const DateLayout = "2006-01-02"

// ItemUsage is one row of the most-used ranking
type ItemUsage struct {
	ItemName  string `json:"item_name"`
	TotalUsed int    `json:"total_used"`
}

// MostUsed ranks items by cumulative usage from current catalog state.
// Ties are broken by ascending name. limit <= 0 returns every item.
func MostUsed(items []domain.StockItem, limit int) []ItemUsage {
	ranking := make([]ItemUsage, 0, len(items))
	for _, item := range items {
		ranking = append(ranking, ItemUsage{ItemName: item.Name, TotalUsed: item.Used})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].TotalUsed != ranking[j].TotalUsed {
			return ranking[i].TotalUsed > ranking[j].TotalUsed
		}
		return ranking[i].ItemName < ranking[j].ItemName
	})

	if limit > 0 && limit < len(ranking) {
		ranking = ranking[:limit]
	}
	return ranking
}

// ContributionsByActor sums usage per actor. Restocks and item creation are not usage.
func ContributionsByActor(entries []domain.LedgerEntry) map[string]int {
	contributions := make(map[string]int)
	for _, entry := range entries {
		if entry.Action != domain.ActionUsageLogged {
			continue
		}
		contributions[entry.Actor] += entry.Quantity
	}
	return contributions
}

// UsageTrends buckets usage by item and calendar date in loc.
// Pairs with no usage are absent. Entries without a timestamp are skipped.
func UsageTrends(entries []domain.LedgerEntry, loc *time.Location) map[string]map[string]int {
	if loc == nil {
		loc = time.Local
	}

	trends := make(map[string]map[string]int)
	for _, entry := range entries {
		if entry.Action != domain.ActionUsageLogged || entry.Timestamp.IsZero() {
			continue
		}

		day := entry.Timestamp.In(loc).Format(DateLayout)
		byDate, ok := trends[entry.ItemName]
		if !ok {
			byDate = make(map[string]int)
			trends[entry.ItemName] = byDate
		}
		byDate[day] += entry.Quantity
	}
	return trends
}

// TrendMatrix is the dense date by item view of usage trends.
// Values[d][i] is the usage of Items[i] on Dates[d], zero when absent.
type TrendMatrix struct {
	Dates  []string `json:"dates"`
	Items  []string `json:"items"`
	Values [][]int  `json:"values"`
}

// DenseTrends expands sparse trends into a zero-filled matrix.
// Only dates and items that appear in trends are included.
func DenseTrends(trends map[string]map[string]int) TrendMatrix {
	dateSet := make(map[string]struct{})
	items := make([]string, 0, len(trends))
	for item, byDate := range trends {
		items = append(items, item)
		for day := range byDate {
			dateSet[day] = struct{}{}
		}
	}

	dates := make([]string, 0, len(dateSet))
	for day := range dateSet {
		dates = append(dates, day)
	}
	sort.Strings(dates)
	sort.Strings(items)

	values := make([][]int, len(dates))
	for d, day := range dates {
		row := make([]int, len(items))
		for i, item := range items {
			row[i] = trends[item][day]
		}
		values[d] = row
	}

	return TrendMatrix{Dates: dates, Items: items, Values: values}
}

// CategoryGroup is the set of items sharing one category
type CategoryGroup struct {
	Category string             `json:"category"`
	Items    []domain.StockItem `json:"items"`
}

// GroupByCategory partitions the catalog by category.
// Groups are ordered by category name and items within a group by item name.
func GroupByCategory(items []domain.StockItem) []CategoryGroup {
	index := make(map[string]int)
	groups := make([]CategoryGroup, 0)
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = domain.DefaultCategory
		}
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, CategoryGroup{Category: category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	for _, group := range groups {
		items := group.Items
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	}
	return groups
}
