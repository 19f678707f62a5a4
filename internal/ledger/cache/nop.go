package cache

import (
	"context"
	"sync"
)

// NopCache never stores anything. Used when Redis is not configured.
type NopCache struct{}

func (NopCache) Generation(context.Context) (int64, error) { return 0, nil }
func (NopCache) GetReport(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopCache) SetReport(context.Context, string, interface{}) error { return nil }
func (NopCache) InvalidateReports(context.Context) error { return nil }

// MemoryGuard claims request ids in process memory.
// Claims are lost on restart.
type MemoryGuard struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewMemoryGuard creates an empty in-process request guard
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{claimed: make(map[string]struct{})}
}

func (g *MemoryGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.claimed[key]; ok {
		return false, nil
	}
	g.claimed[key] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.claimed, key)
	return nil
}
