package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

var tracer = otel.Tracer("ledger-repository")

// TracingLedgerRepository wraps a LedgerRepository with one span per call
type TracingLedgerRepository struct {
	next domain.LedgerRepository
}

// NewTracingLedgerRepository creates a new repository with tracing
func NewTracingLedgerRepository(next domain.LedgerRepository) *TracingLedgerRepository {
	return &TracingLedgerRepository{next: next}
}

func (r *TracingLedgerRepository) CreateItem(ctx context.Context, item *domain.StockItem, entry *domain.LedgerEntry) error {
	ctx, span := tracer.Start(ctx, "repository.CreateItem",
		trace.WithAttributes(
			attribute.String("item.name", item.Name),
			attribute.String("item.category", item.Category),
			attribute.Int("item.total_stock", item.TotalStock),
		),
	)
	defer span.End()

	err := r.next.CreateItem(ctx, item, entry)
	recordError(span, err)
	return err
}

func (r *TracingLedgerRepository) ApplyUsage(ctx context.Context, entry *domain.LedgerEntry) (*domain.StockItem, error) {
	ctx, span := tracer.Start(ctx, "repository.ApplyUsage", trace.WithAttributes(entryAttributes(entry)...))
	defer span.End()

	item, err := r.next.ApplyUsage(ctx, entry)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("item.remaining", item.Remaining()))
	return item, nil
}

func (r *TracingLedgerRepository) ApplyRestock(ctx context.Context, entry *domain.LedgerEntry) (*domain.StockItem, error) {
	ctx, span := tracer.Start(ctx, "repository.ApplyRestock", trace.WithAttributes(entryAttributes(entry)...))
	defer span.End()

	item, err := r.next.ApplyRestock(ctx, entry)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("item.remaining", item.Remaining()))
	return item, nil
}

func (r *TracingLedgerRepository) FindItem(ctx context.Context, name string) (*domain.StockItem, error) {
	ctx, span := tracer.Start(ctx, "repository.FindItem",
		trace.WithAttributes(attribute.String("item.name", name)),
	)
	defer span.End()

	item, err := r.next.FindItem(ctx, name)
	recordError(span, err)
	return item, err
}

func (r *TracingLedgerRepository) ListItems(ctx context.Context) ([]domain.StockItem, error) {
	ctx, span := tracer.Start(ctx, "repository.ListItems")
	defer span.End()

	items, err := r.next.ListItems(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, nil
}

func (r *TracingLedgerRepository) ListEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	ctx, span := tracer.Start(ctx, "repository.ListEntries")
	defer span.End()

	entries, err := r.next.ListEntries(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(entries)))
	return entries, nil
}

func (r *TracingLedgerRepository) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "repository.Ping")
	defer span.End()

	err := r.next.Ping(ctx)
	recordError(span, err)
	return err
}

func entryAttributes(entry *domain.LedgerEntry) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("entry.item_name", entry.ItemName),
		attribute.String("entry.actor", entry.Actor),
		attribute.String("entry.action", string(entry.Action)),
		attribute.Int("entry.quantity", entry.Quantity),
	}
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	if domain.IsCallerError(err) {
		// Rejected requests are not service faults
		span.SetAttributes(attribute.Bool("ledger.rejected", true))
		return
	}
	span.SetStatus(codes.Error, err.Error())
}
