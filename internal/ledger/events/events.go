package events

import (
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// EntryRecordedEvent announces one committed ledger entry
type EntryRecordedEvent struct {
	EventID   string        `json:"event_id"`
	EventType string        `json:"event_type"`
	LedgerID  uint          `json:"ledger_id"`
	Action    domain.Action `json:"action"`
	ItemName  string        `json:"item_name"`
	Quantity  int           `json:"quantity"`
	Actor     string        `json:"actor"`
	Timestamp time.Time     `json:"timestamp"`
}

// StockRequest asks the ledger to consume or restock an item on behalf of actor
type StockRequest struct {
	RequestID string `json:"request_id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	Actor     string `json:"actor"`
}

// Event types
const (
	EventTypeEntryRecorded    = "ledger.entry_recorded"
	EventTypeUsageRequested   = "stock.usage_requested"
	EventTypeRestockRequested = "stock.restock_requested"
)

// Kafka topics
const (
	TopicLedgerEntries = "stock-ledger-entries"
	TopicStockRequests = "stock-requests"
)

func newEntryRecordedEvent(entry domain.LedgerEntry) EntryRecordedEvent {
	return EntryRecordedEvent{
		EventID:   entry.EventID,
		EventType: EventTypeEntryRecorded,
		LedgerID:  entry.ID,
		Action:    entry.Action,
		ItemName:  entry.ItemName,
		Quantity:  entry.Quantity,
		Actor:     entry.Actor,
		Timestamp: entry.Timestamp,
	}
}
