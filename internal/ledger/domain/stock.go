package domain

import (
	"encoding/json"
	"math"
	"time"
)

// DefaultCategory is assigned to items created without a category
const DefaultCategory = "Misc"

// StockItem represents one trackable catalog entry
type StockItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"uniqueIndex;not null;size:128"`
	Category   string    `json:"category" gorm:"not null;default:'Misc';size:64"`
	TotalStock int       `json:"total_stock" gorm:"not null"`
	Used       int       `json:"used" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (StockItem) TableName() string {
	return "stock_items"
}

// Remaining returns the units still available. It is never stored.
func (i StockItem) Remaining() int {
	return i.TotalStock - i.Used
}

// CanConsume reports whether quantity units can be taken without driving remaining below zero
func (i StockItem) CanConsume(quantity int) bool {
	return quantity <= i.Remaining()
}

// CanRestock reports whether quantity units can be added without overflowing total stock
func (i StockItem) CanRestock(quantity int) bool {
	return quantity <= math.MaxInt-i.TotalStock
}

// MarshalJSON adds the computed remaining field to the serialized item
func (i StockItem) MarshalJSON() ([]byte, error) {
	type item StockItem
	return json.Marshal(struct {
		item
		Remaining int `json:"remaining"`
	}{item: item(i), Remaining: i.Remaining()})
}

// Action is the kind of mutation a ledger entry records
type Action string

const (
	ActionItemCreated Action = "ItemCreated"
	ActionUsageLogged Action = "UsageLogged"
	ActionRestocked   Action = "Restocked"
)

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	switch a {
	case ActionItemCreated, ActionUsageLogged, ActionRestocked:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one mutation event.
// Quantity is always positive; direction is carried by Action.
type LedgerEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID   string    `json:"event_id" gorm:"uniqueIndex;not null;size:36"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
	Actor     string    `json:"actor" gorm:"not null;index;size:64"`
	ItemName  string    `json:"item_name" gorm:"not null;index;size:128"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Action    Action    `json:"action" gorm:"not null;size:32"`
}

// TableName specifies the table name
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// Totals is the stock position of one item as reconstructed from its entries
type Totals struct {
	TotalStock int `json:"total_stock"`
	Used       int `json:"used"`
}

// Apply folds a single entry into the totals
func (t *Totals) Apply(entry LedgerEntry) {
	switch entry.Action {
	case ActionItemCreated:
		t.TotalStock = entry.Quantity
	case ActionRestocked:
		t.TotalStock += entry.Quantity
	case ActionUsageLogged:
		t.Used += entry.Quantity
	}
}

// Replay rebuilds per-item totals from an ordered ledger
func Replay(entries []LedgerEntry) map[string]Totals {
	totals := make(map[string]Totals)
	for _, entry := range entries {
		t := totals[entry.ItemName]
		t.Apply(entry)
		totals[entry.ItemName] = t
	}
	return totals
}
