package ledger

import (
	identitycmd "github.com/tair/stock-ledger/internal/identity/usecase/command"
	grpcDelivery "github.com/tair/stock-ledger/internal/ledger/delivery/grpc"
	httpDelivery "github.com/tair/stock-ledger/internal/ledger/delivery/http"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/events"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
)

// Application holds the fully wired delivery layers of the ledger service
type Application struct {
	HTTP       *httpDelivery.LedgerHandler
	GRPC       *grpcDelivery.LedgerServer
	Dispatcher *events.StockRequestDispatcher
	Accounts   *identitycmd.Handlers
}

// ProvideLogUsageHandler exposes the usage handler for the stock request consumer
func ProvideLogUsageHandler(commands *command.Handlers) *command.LogUsageHandler {
	return commands.LogUsage
}

// ProvideRestockHandler exposes the restock handler for the stock request consumer
func ProvideRestockHandler(commands *command.Handlers) *command.RestockHandler {
	return commands.Restock
}

// ProvideStockRequestDispatcher builds the Kafka stock request dispatcher
func ProvideStockRequestDispatcher(
	usage *command.LogUsageHandler,
	restock *command.RestockHandler,
	guard domain.RequestGuard,
) *events.StockRequestDispatcher {
	return events.NewStockRequestDispatcher(usage, restock, guard)
}
