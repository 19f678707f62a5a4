package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// itemSlot serializes every mutation of one item
type itemSlot struct {
	mu   sync.Mutex
	item domain.StockItem
}

// MemoryLedgerRepository keeps the catalog and ledger in process memory.
// Mutations on the same item are serialized by the item's slot lock;
// different items proceed in parallel.
type MemoryLedgerRepository struct {
	catalogMu sync.RWMutex
	items     map[string]*itemSlot
	nextID    uint

	ledgerMu  sync.RWMutex
	entries   []domain.LedgerEntry
	lastStamp time.Time

	now func() time.Time
}

// NewMemoryLedgerRepository creates an empty in-memory repository
func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{
		items:   make(map[string]*itemSlot),
		entries: make([]domain.LedgerEntry, 0),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (r *MemoryLedgerRepository) WithClock(now func() time.Time) *MemoryLedgerRepository {
	r.now = now
	return r
}

func (r *MemoryLedgerRepository) CreateItem(_ context.Context, item *domain.StockItem, entry *domain.LedgerEntry) error {
	r.catalogMu.Lock()
	defer r.catalogMu.Unlock()

	if _, exists := r.items[item.Name]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateItem, item.Name)
	}

	r.nextID++
	stamp := r.append(entry)
	item.ID = r.nextID
	item.CreatedAt = stamp
	item.UpdatedAt = stamp
	r.items[item.Name] = &itemSlot{item: *item}
	return nil
}

func (r *MemoryLedgerRepository) ApplyUsage(_ context.Context, entry *domain.LedgerEntry) (*domain.StockItem, error) {
	slot, err := r.slot(entry.ItemName)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if !slot.item.CanConsume(entry.Quantity) {
		return nil, fmt.Errorf("%w: %q has %d remaining, %d requested",
			domain.ErrInsufficientStock, entry.ItemName, slot.item.Remaining(), entry.Quantity)
	}

	slot.item.Used += entry.Quantity
	slot.item.UpdatedAt = r.append(entry)
	item := slot.item
	return &item, nil
}

func (r *MemoryLedgerRepository) ApplyRestock(_ context.Context, entry *domain.LedgerEntry) (*domain.StockItem, error) {
	slot, err := r.slot(entry.ItemName)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if !slot.item.CanRestock(entry.Quantity) {
		return nil, overflow(slot.item, entry.Quantity)
	}

	slot.item.TotalStock += entry.Quantity
	slot.item.UpdatedAt = r.append(entry)
	item := slot.item
	return &item, nil
}

func (r *MemoryLedgerRepository) FindItem(_ context.Context, name string) (*domain.StockItem, error) {
	slot, err := r.slot(name)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	item := slot.item
	slot.mu.Unlock()
	return &item, nil
}

func (r *MemoryLedgerRepository) ListItems(_ context.Context) ([]domain.StockItem, error) {
	r.catalogMu.RLock()
	slots := make([]*itemSlot, 0, len(r.items))
	for _, slot := range r.items {
		slots = append(slots, slot)
	}
	r.catalogMu.RUnlock()

	items := make([]domain.StockItem, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		items = append(items, slot.item)
		slot.mu.Unlock()
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryLedgerRepository) ListEntries(_ context.Context) ([]domain.LedgerEntry, error) {
	r.ledgerMu.RLock()
	defer r.ledgerMu.RUnlock()

	entries := make([]domain.LedgerEntry, len(r.entries))
	copy(entries, r.entries)
	return entries, nil
}

func (r *MemoryLedgerRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MemoryLedgerRepository) slot(name string) (*itemSlot, error) {
	r.catalogMu.RLock()
	defer r.catalogMu.RUnlock()

	slot, ok := r.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrItemNotFound, name)
	}
	return slot, nil
}

// append stamps and stores entry, returning the timestamp it was given.
// Timestamps never go backwards even if the clock does.
func (r *MemoryLedgerRepository) append(entry *domain.LedgerEntry) time.Time {
	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	stamp := r.now()
	if stamp.Before(r.lastStamp) {
		stamp = r.lastStamp
	}
	r.lastStamp = stamp

	entry.ID = uint(len(r.entries) + 1)
	entry.Timestamp = stamp
	r.entries = append(r.entries, *entry)
	return stamp
}
