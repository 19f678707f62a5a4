package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/report"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
)

// LedgerServer implements LedgerServiceServer over the ledger use cases
type LedgerServer struct {
	commands *command.Handlers
	queries  *query.Handlers
}

// NewLedgerServer creates a new gRPC ledger server
func NewLedgerServer(commands *command.Handlers, queries *query.Handlers) *LedgerServer {
	return &LedgerServer{commands: commands, queries: queries}
}

// CreateItem handles {name, stock, category}
func (s *LedgerServer) CreateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	stock, err := intField(req, "stock")
	if err != nil {
		return nil, toStatus(err)
	}

	item, err := s.commands.CreateItem.Handle(ctx, command.CreateItemCommand{
		Name:         stringField(req, "name"),
		InitialStock: stock,
		Category:     stringField(req, "category"),
		Actor:        callerName(ctx),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"item": item})
}

// LogUsage handles {item_name, quantity}
func (s *LedgerServer) LogUsage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	qty, err := intField(req, "quantity")
	if err != nil {
		return nil, toStatus(err)
	}

	result, err := s.commands.LogUsage.Handle(ctx, command.LogUsageCommand{
		ItemName: stringField(req, "item_name"),
		Quantity: qty,
		Actor:    callerName(ctx),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(result)
}

// Restock handles {item_name, quantity}
func (s *LedgerServer) Restock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	qty, err := intField(req, "quantity")
	if err != nil {
		return nil, toStatus(err)
	}

	result, err := s.commands.Restock.Handle(ctx, command.RestockCommand{
		ItemName: stringField(req, "item_name"),
		Quantity: qty,
		Actor:    callerName(ctx),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(result)
}

// GetCatalog handles {group}; group "category" buckets the items
func (s *LedgerServer) GetCatalog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	view, err := s.queries.Catalog.Handle(ctx, query.GetCatalogQuery{
		GroupByCategory: stringField(req, "group") == "category",
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(view)
}

// MostUsed handles {limit}
func (s *LedgerServer) MostUsed(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := 0
	if _, ok := req.GetFields()["limit"]; ok {
		n, err := intField(req, "limit")
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "limit must be a whole number")
		}
		limit = n
	}

	ranking, err := s.queries.MostUsed.Handle(ctx, query.MostUsedQuery{Limit: limit})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"items": ranking})
}

// Contributions returns {contributions: {actor: units}}
func (s *LedgerServer) Contributions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	totals, err := s.queries.Contributions.Handle(ctx, query.ContributionsQuery{})
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"contributions": totals})
}

// UsageTrends handles {format, tz}
func (s *LedgerServer) UsageTrends(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var loc *time.Location
	if tz := stringField(req, "tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "unknown timezone %q", tz)
		}
		loc = parsed
	}

	trends, err := s.queries.UsageTrends.Handle(ctx, query.UsageTrendsQuery{Location: loc})
	if err != nil {
		return nil, toStatus(err)
	}

	switch format := stringField(req, "format"); format {
	case "", "sparse":
		return toStruct(map[string]interface{}{"trends": trends})
	case "matrix":
		return toStruct(report.DenseTrends(trends))
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown format %q", format)
	}
}

// toStatus maps domain failures onto gRPC status codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateItem):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, domain.ErrStorageUnavailable.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// intField reads a whole number sent either as a number or a numeric string
func intField(req *structpb.Struct, key string) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidQuantity, key)
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %v is not a whole number", domain.ErrInvalidQuantity, n)
		}
		return int(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.Atoi(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a whole number", domain.ErrInvalidQuantity, kind.StringValue)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidQuantity, key)
	}
}

// toStruct converts any JSON-serializable value into a Struct document
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}
