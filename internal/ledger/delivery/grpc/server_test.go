package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tair/stock-ledger/internal/ledger/repository"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
	"github.com/tair/stock-ledger/pkg/auth"
)

type testClient struct {
	client *LedgerServiceClient
	token  string
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	repo := repository.NewMemoryLedgerRepository()
	tokens := auth.NewTokenManager("test-secret", time.Hour, "stock-ledger")

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor, AuthInterceptor(tokens)))
	RegisterLedgerServiceServer(server, NewLedgerServer(
		command.NewHandlers(repo, nil, nil),
		query.NewHandlers(repo, nil, time.UTC),
	))

	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	token, err := tokens.GenerateToken(7, "Tair", "employee")
	require.NoError(t, err)

	return &testClient{client: NewLedgerServiceClient(conn), token: token}
}

func (c *testClient) call(t *testing.T, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()

	in, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	return c.client.Call(ctx, method, in)
}

func TestLedgerServer_MopScenario(t *testing.T) {
	c := newTestClient(t)

	_, err := c.call(t, "CreateItem", map[string]interface{}{"name": "Mop", "stock": 10, "category": "Cleaning"})
	require.NoError(t, err)

	out, err := c.call(t, "LogUsage", map[string]interface{}{"item_name": "Mop", "quantity": "3"})
	require.NoError(t, err)
	item := out.GetFields()["item"].GetStructValue().GetFields()
	assert.Equal(t, float64(3), item["used"].GetNumberValue())

	out, err = c.call(t, "Restock", map[string]interface{}{"item_name": "Mop", "quantity": 5})
	require.NoError(t, err)
	entry := out.GetFields()["entry"].GetStructValue().GetFields()
	assert.Equal(t, "Tair", entry["actor"].GetStringValue())

	out, err = c.call(t, "MostUsed", map[string]interface{}{"limit": 1})
	require.NoError(t, err)
	ranking := out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, ranking, 1)

	out, err = c.call(t, "Contributions", map[string]interface{}{})
	require.NoError(t, err)
	totals := out.GetFields()["contributions"].GetStructValue().GetFields()
	assert.Equal(t, float64(3), totals["Tair"].GetNumberValue())

	out, err = c.call(t, "GetCatalog", map[string]interface{}{"group": "category"})
	require.NoError(t, err)
	assert.Len(t, out.GetFields()["groups"].GetListValue().GetValues(), 1)

	out, err = c.call(t, "UsageTrends", map[string]interface{}{"format": "matrix"})
	require.NoError(t, err)
	assert.Len(t, out.GetFields()["items"].GetListValue().GetValues(), 1)
}

func TestLedgerServer_StatusCodes(t *testing.T) {
	c := newTestClient(t)

	_, err := c.call(t, "CreateItem", map[string]interface{}{"name": "Bucket", "stock": 2})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		fields map[string]interface{}
		want   codes.Code
	}{
		{"duplicate item", "CreateItem", map[string]interface{}{"name": "Bucket", "stock": 1}, codes.AlreadyExists},
		{"unknown item", "LogUsage", map[string]interface{}{"item_name": "Sponge", "quantity": 1}, codes.NotFound},
		{"fractional quantity", "LogUsage", map[string]interface{}{"item_name": "Bucket", "quantity": 1.5}, codes.InvalidArgument},
		{"missing quantity", "Restock", map[string]interface{}{"item_name": "Bucket"}, codes.InvalidArgument},
		{"overdraw", "LogUsage", map[string]interface{}{"item_name": "Bucket", "quantity": 3}, codes.FailedPrecondition},
		{"bad timezone", "UsageTrends", map[string]interface{}{"tz": "Mars/Olympus"}, codes.InvalidArgument},
		{"bad format", "UsageTrends", map[string]interface{}{"format": "cube"}, codes.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.call(t, tt.method, tt.fields)
			require.Error(t, err)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestAuthInterceptor_RejectsMissingToken(t *testing.T) {
	c := newTestClient(t)

	in, err := structpb.NewStruct(map[string]interface{}{})
	require.NoError(t, err)

	_, err = c.client.Call(context.Background(), "Contributions", in)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	c.token = "not-a-token"
	_, err = c.call(t, "Contributions", map[string]interface{}{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
