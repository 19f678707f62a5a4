package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/repository"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
)

type jsonCache struct {
	gen     int64
	reports map[string][]byte
	reads   int
	hits    int
	failGet bool
}

func newJSONCache() *jsonCache {
	return &jsonCache{reports: make(map[string][]byte)}
}

func (c *jsonCache) Generation(context.Context) (int64, error) {
	return c.gen, nil
}

func (c *jsonCache) GetReport(_ context.Context, key string, dst interface{}) (bool, error) {
	c.reads++
	if c.failGet {
		return false, errors.New("cache offline")
	}
	raw, ok := c.reports[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *jsonCache) SetReport(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.reports[key] = raw
	return nil
}

func (c *jsonCache) InvalidateReports(context.Context) error {
	c.gen++
	c.reports = make(map[string][]byte)
	return nil
}

func seed(t *testing.T, repo *repository.MemoryLedgerRepository, name, category string, stock int) {
	t.Helper()
	item := &domain.StockItem{Name: name, Category: category, TotalStock: stock}
	entry := &domain.LedgerEntry{EventID: uuid.NewString(), Actor: "admin", ItemName: name, Quantity: stock, Action: domain.ActionItemCreated}
	require.NoError(t, repo.CreateItem(context.Background(), item, entry))
}

func use(t *testing.T, repo *repository.MemoryLedgerRepository, name, actor string, qty int) {
	t.Helper()
	entry := &domain.LedgerEntry{EventID: uuid.NewString(), Actor: actor, ItemName: name, Quantity: qty, Action: domain.ActionUsageLogged}
	_, err := repo.ApplyUsage(context.Background(), entry)
	require.NoError(t, err)
}

func TestGetCatalog(t *testing.T) {
	repo := repository.NewMemoryLedgerRepository()
	seed(t, repo, "Tape", "Office", 3)
	seed(t, repo, "Broom", "Cleaning", 4)
	seed(t, repo, "Mop", "Cleaning", 5)

	handler := NewGetCatalogHandler(repo)

	flat, err := handler.Handle(context.Background(), GetCatalogQuery{})
	require.NoError(t, err)
	require.Len(t, flat.Items, 3)
	assert.Equal(t, "Broom", flat.Items[0].Name)
	assert.Empty(t, flat.Groups)

	grouped, err := handler.Handle(context.Background(), GetCatalogQuery{GroupByCategory: true})
	require.NoError(t, err)
	require.Len(t, grouped.Groups, 2)
	assert.Equal(t, "Cleaning", grouped.Groups[0].Category)
	assert.Len(t, grouped.Groups[0].Items, 2)
}

func TestGetLedger_InsertionOrder(t *testing.T) {
	repo := repository.NewMemoryLedgerRepository()
	seed(t, repo, "Mop", "Cleaning", 50)
	use(t, repo, "Mop", "alice", 30)

	entries, err := NewGetLedgerHandler(repo).Handle(context.Background(), GetLedgerQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionItemCreated, entries[0].Action)
	assert.Equal(t, domain.ActionUsageLogged, entries[1].Action)
}

func TestMostUsed_ServedFromCacheUntilInvalidated(t *testing.T) {
	repo := repository.NewMemoryLedgerRepository()
	cache := newJSONCache()
	seed(t, repo, "Mop", "Cleaning", 50)
	seed(t, repo, "Tape", "Office", 50)
	use(t, repo, "Tape", "alice", 7)

	handler := NewMostUsedHandler(repo, cache)
	ctx := context.Background()

	first, err := handler.Handle(ctx, MostUsedQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Tape", first[0].ItemName)

	second, err := handler.Handle(ctx, MostUsedQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	use(t, repo, "Mop", "bob", 20)
	require.NoError(t, cache.InvalidateReports(ctx))

	third, err := handler.Handle(ctx, MostUsedQuery{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "Mop", third[0].ItemName)
	assert.Equal(t, 20, third[0].TotalUsed)
}

func TestReadThrough_InvalidationDuringComputeIsNotServedStale(t *testing.T) {
	cache := newJSONCache()
	ctx := context.Background()
	version := 1

	compute := func() (int, error) {
		value := version
		if version == 1 {
			// A mutation commits and invalidates while this report is being computed
			version = 2
			require.NoError(t, cache.InvalidateReports(ctx))
		}
		return value, nil
	}

	first, err := readThrough(ctx, cache, "report", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := readThrough(ctx, cache, "report", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, second, "a report computed before the invalidation must not be served")
	assert.Equal(t, 0, cache.hits)

	third, err := readThrough(ctx, cache, "report", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, third)
	assert.Equal(t, 1, cache.hits)
}

func TestContributions_CacheFailureFallsBack(t *testing.T) {
	repo := repository.NewMemoryLedgerRepository()
	cache := newJSONCache()
	cache.failGet = true
	seed(t, repo, "Mop", "Cleaning", 50)
	use(t, repo, "Mop", "alice", 3)
	use(t, repo, "Mop", "alice", 2)

	totals, err := NewContributionsHandler(repo, cache).Handle(context.Background(), ContributionsQuery{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alice": 5}, totals)
}

func TestUsageTrends_DefaultAndOverrideLocation(t *testing.T) {
	late := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	repo := repository.NewMemoryLedgerRepository().WithClock(func() time.Time { return late })
	seed(t, repo, "Mop", "Cleaning", 50)
	use(t, repo, "Mop", "alice", 4)

	handler := NewUsageTrendsHandler(repo, nil, time.UTC)

	utc, err := handler.Handle(context.Background(), UsageTrendsQuery{})
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]int{"Mop": {"2024-03-01": 4}}, utc)

	tokyo := time.FixedZone("UTC+9", 9*60*60)
	shifted, err := handler.Handle(context.Background(), UsageTrendsQuery{Location: tokyo})
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]int{"Mop": {"2024-03-02": 4}}, shifted)
}

func TestReconcile_ConsistentAfterMutations(t *testing.T) {
	repo := repository.NewMemoryLedgerRepository()
	ctx := context.Background()
	seed(t, repo, "Mop", "Cleaning", 50)
	seed(t, repo, "Gloves", "Safety", 5)
	use(t, repo, "Mop", "alice", 30)

	usage := command.NewLogUsageHandler(repo, nil, nil)
	restock := command.NewRestockHandler(repo, nil, nil)

	_, err := restock.Handle(ctx, command.RestockCommand{ItemName: "Mop", Quantity: 10, Actor: "bob"})
	require.NoError(t, err)
	_, err = restock.Handle(ctx, command.RestockCommand{ItemName: "Gloves", Quantity: 2, Actor: "bob"})
	require.NoError(t, err)
	_, err = usage.Handle(ctx, command.LogUsageCommand{ItemName: "Gloves", Quantity: 7, Actor: "alice"})
	require.NoError(t, err)

	before, err := repo.ListEntries(ctx)
	require.NoError(t, err)

	_, err = usage.Handle(ctx, command.LogUsageCommand{ItemName: "Mop", Quantity: 31, Actor: "alice"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = usage.Handle(ctx, command.LogUsageCommand{ItemName: "Gloves", Quantity: 1, Actor: "alice"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = usage.Handle(ctx, command.LogUsageCommand{ItemName: "Mop", Quantity: 0, Actor: "alice"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = restock.Handle(ctx, command.RestockCommand{ItemName: "Mop", Quantity: -4, Actor: "bob"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	after, err := repo.ListEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected commands must not append entries")

	result, err := NewReconcileHandler(repo).Handle(ctx, ReconcileQuery{})
	require.NoError(t, err)
	assert.True(t, result.Consistent)
	assert.Empty(t, result.Drifted)
	assert.Equal(t, 2, result.ItemsChecked)
	assert.Equal(t, 6, result.EntriesChecked)
}
