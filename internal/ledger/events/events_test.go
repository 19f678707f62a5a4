package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/repository"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
)

func headerValue(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishEntry(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, TopicLedgerEntries, msg.Topic)
		assert.Equal(t, EventTypeEntryRecorded, headerValue(msg, "event_type"))
		assert.Equal(t, "evt-1", headerValue(msg, "event_id"))

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "item_Mop", string(key))

		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var event EntryRecordedEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, domain.ActionUsageLogged, event.Action)
		assert.Equal(t, 30, event.Quantity)
		assert.Equal(t, "alice", event.Actor)
		return nil
	})

	publisher := NewPublisherWithProducer(producer)
	err := publisher.PublishEntry(context.Background(), domain.LedgerEntry{
		ID:        2,
		EventID:   "evt-1",
		Timestamp: time.Now(),
		Actor:     "alice",
		ItemName:  "Mop",
		Quantity:  30,
		Action:    domain.ActionUsageLogged,
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestPublishEntry_BrokerFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewPublisherWithProducer(producer)
	err := publisher.PublishEntry(context.Background(), domain.LedgerEntry{EventID: "evt-2", ItemName: "Mop"})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func stockMessage(t *testing.T, eventType string, req StockRequest) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{
		Topic: TopicStockRequests,
		Value: raw,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(eventType)},
			{Key: []byte("event_id"), Value: []byte(req.RequestID)},
		},
	}
}

func newDispatchFixture(t *testing.T) (*Consumer, *repository.MemoryLedgerRepository) {
	t.Helper()
	repo := repository.NewMemoryLedgerRepository()
	_, err := command.NewCreateItemHandler(repo, nil, nil).Handle(context.Background(), command.CreateItemCommand{Name: "Mop", InitialStock: 10})
	require.NoError(t, err)

	dispatcher := NewStockRequestDispatcher(
		command.NewLogUsageHandler(repo, nil, nil),
		command.NewRestockHandler(repo, nil, nil),
		cache.NewMemoryGuard(),
	)
	consumer := newConsumer(nil, "test")
	dispatcher.Register(consumer)
	return consumer, repo
}

func TestHandleMessage_AppliesOncePerRequest(t *testing.T) {
	consumer, repo := newDispatchFixture(t)
	ctx := context.Background()

	msg := stockMessage(t, EventTypeUsageRequested, StockRequest{RequestID: "r-1", ItemName: "Mop", Quantity: 4, Actor: "alice"})
	require.NoError(t, consumer.handleMessage(ctx, msg))
	require.NoError(t, consumer.handleMessage(ctx, msg))

	restock := stockMessage(t, EventTypeRestockRequested, StockRequest{RequestID: "r-2", ItemName: "Mop", Quantity: 5, Actor: "bob"})
	require.NoError(t, consumer.handleMessage(ctx, restock))

	item, err := repo.FindItem(ctx, "Mop")
	require.NoError(t, err)
	assert.Equal(t, 4, item.Used)
	assert.Equal(t, 15, item.TotalStock)
}

func TestHandleMessage_Rejections(t *testing.T) {
	consumer, _ := newDispatchFixture(t)
	ctx := context.Background()

	tooMuch := stockMessage(t, EventTypeUsageRequested, StockRequest{RequestID: "r-3", ItemName: "Mop", Quantity: 11, Actor: "alice"})
	assert.ErrorIs(t, consumer.handleMessage(ctx, tooMuch), domain.ErrInsufficientStock)

	noID := stockMessage(t, EventTypeUsageRequested, StockRequest{ItemName: "Mop", Quantity: 1})
	assert.ErrorIs(t, consumer.handleMessage(ctx, noID), domain.ErrInvalidInput)

	unknown := stockMessage(t, "stock.audit_requested", StockRequest{RequestID: "r-4"})
	assert.Error(t, consumer.handleMessage(ctx, unknown))

	bare := &sarama.ConsumerMessage{Topic: TopicStockRequests, Value: []byte(`{}`)}
	assert.Error(t, consumer.handleMessage(ctx, bare))

	garbled := stockMessage(t, EventTypeRestockRequested, StockRequest{})
	garbled.Value = []byte("not json")
	assert.Error(t, consumer.handleMessage(ctx, garbled))
}

type failingGuard struct{}

func (failingGuard) Claim(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingGuard) Release(context.Context, string) error {
	return errors.New("redis down")
}

// flakyRepo fails usage writes with a storage fault while down is set
type flakyRepo struct {
	*repository.MemoryLedgerRepository
	down bool
}

func (r *flakyRepo) ApplyUsage(ctx context.Context, entry *domain.LedgerEntry) (*domain.StockItem, error) {
	if r.down {
		return nil, fmt.Errorf("%w: connection refused", domain.ErrStorageUnavailable)
	}
	return r.MemoryLedgerRepository.ApplyUsage(ctx, entry)
}

func TestDispatcher_GuardFailure(t *testing.T) {
	repo := repository.NewMemoryLedgerRepository()
	dispatcher := NewStockRequestDispatcher(command.NewLogUsageHandler(repo, nil, nil), command.NewRestockHandler(repo, nil, nil), failingGuard{})

	err := dispatcher.HandleUsage(context.Background(), StockRequest{RequestID: "r-5", ItemName: "Mop", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestDispatcher_ReleasesClaimOnStorageFault(t *testing.T) {
	repo := &flakyRepo{MemoryLedgerRepository: repository.NewMemoryLedgerRepository(), down: true}
	ctx := context.Background()
	_, err := command.NewCreateItemHandler(repo, nil, nil).Handle(ctx, command.CreateItemCommand{Name: "Mop", InitialStock: 10})
	require.NoError(t, err)

	guard := cache.NewMemoryGuard()
	dispatcher := NewStockRequestDispatcher(command.NewLogUsageHandler(repo, nil, nil), command.NewRestockHandler(repo, nil, nil), guard)
	req := StockRequest{RequestID: "r-6", ItemName: "Mop", Quantity: 3, Actor: "alice"}

	err = dispatcher.HandleUsage(ctx, req)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	repo.down = false
	require.NoError(t, dispatcher.HandleUsage(ctx, req))
	require.NoError(t, dispatcher.HandleUsage(ctx, req))

	item, err := repo.FindItem(ctx, "Mop")
	require.NoError(t, err)
	assert.Equal(t, 3, item.Used)
}

func TestDispatcher_KeepsClaimOnCallerError(t *testing.T) {
	consumer, repo := newDispatchFixture(t)
	ctx := context.Background()

	tooMuch := stockMessage(t, EventTypeUsageRequested, StockRequest{RequestID: "r-7", ItemName: "Mop", Quantity: 11, Actor: "alice"})
	assert.ErrorIs(t, consumer.handleMessage(ctx, tooMuch), domain.ErrInsufficientStock)

	// The same request id is not reconsidered even after stock would allow it
	_, err := repo.ApplyRestock(ctx, &domain.LedgerEntry{EventID: "restock-r-7", Actor: "bob", ItemName: "Mop", Quantity: 5, Action: domain.ActionRestocked})
	require.NoError(t, err)
	require.NoError(t, consumer.handleMessage(ctx, tooMuch))

	item, err := repo.FindItem(ctx, "Mop")
	require.NoError(t, err)
	assert.Equal(t, 0, item.Used)
}
