package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "stockledger.v1.LedgerService"

// LedgerServiceServer is the server API for the ledger service.
// Requests and responses are google.protobuf.Struct documents.
type LedgerServiceServer interface {
	CreateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LogUsage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Restock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MostUsed(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Contributions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UsageTrends(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LedgerServiceDesc describes the ledger service for grpc.Server registration
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodHandler("CreateItem", LedgerServiceServer.CreateItem),
		methodHandler("LogUsage", LedgerServiceServer.LogUsage),
		methodHandler("Restock", LedgerServiceServer.Restock),
		methodHandler("GetCatalog", LedgerServiceServer.GetCatalog),
		methodHandler("MostUsed", LedgerServiceServer.MostUsed),
		methodHandler("Contributions", LedgerServiceServer.Contributions),
		methodHandler("UsageTrends", LedgerServiceServer.UsageTrends),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// LedgerServiceClient calls the ledger service over a client connection
type LedgerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerServiceClient creates a client over cc
func NewLedgerServiceClient(cc grpc.ClientConnInterface) *LedgerServiceClient {
	return &LedgerServiceClient{cc: cc}
}

// Call invokes method with in and returns the response document
func (c *LedgerServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
