//go:build wireinject
// +build wireinject

package ledger

import (
	"time"

	"github.com/google/wire"

	identitydomain "github.com/tair/stock-ledger/internal/identity/domain"
	identitycmd "github.com/tair/stock-ledger/internal/identity/usecase/command"
	grpcDelivery "github.com/tair/stock-ledger/internal/ledger/delivery/grpc"
	httpDelivery "github.com/tair/stock-ledger/internal/ledger/delivery/http"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
	"github.com/tair/stock-ledger/pkg/auth"
)

var CommandHandlerSet = wire.NewSet(
	command.NewHandlers,
	identitycmd.NewHandlers,
	wire.Bind(new(identitycmd.TokenIssuer), new(*auth.TokenManager)),
)

var QueryHandlerSet = wire.NewSet(
	query.NewHandlers,
)

var DeliverySet = wire.NewSet(
	ProvideLogUsageHandler,
	ProvideRestockHandler,
	ProvideStockRequestDispatcher,
	httpDelivery.NewLedgerHandler,
	grpcDelivery.NewLedgerServer,
	wire.Bind(new(httpDelivery.TokenValidator), new(*auth.TokenManager)),
	wire.Bind(new(httpDelivery.Pinger), new(domain.LedgerRepository)),
	wire.Struct(new(Application), "*"),
)

// InitializeApplication wires the use cases and delivery layers over the given infrastructure
func InitializeApplication(
	repo domain.LedgerRepository,
	users identitydomain.UserRepository,
	publisher domain.EntryPublisher,
	reports domain.ReportCache,
	guard domain.RequestGuard,
	tokens *auth.TokenManager,
	location *time.Location,
) (*Application, error) {
	wire.Build(
		CommandHandlerSet,
		QueryHandlerSet,
		DeliverySet,
	)
	return nil, nil
}
