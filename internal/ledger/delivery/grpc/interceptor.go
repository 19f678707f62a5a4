package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tair/stock-ledger/pkg/auth"
	"github.com/tair/stock-ledger/pkg/logger"
)

var (
	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_grpc_requests_total",
			Help: "Total number of gRPC requests to the stock ledger",
		},
		[]string{"method", "code"},
	)

	grpcLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_grpc_request_duration_seconds",
			Help:    "Duration of stock ledger gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(grpcRequests, grpcLatency)
}

// TokenValidator resolves a bearer token to its claims
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type callerKey struct{}

// Caller is the authenticated principal of a gRPC call
type Caller struct {
	UserID   uint
	Username string
	Role     string
}

// CallerFromContext returns the caller stored by the auth interceptor
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

func callerName(ctx context.Context) string {
	c, _ := CallerFromContext(ctx)
	return c.Username
}

// LoggingInterceptor logs gRPC requests and records their metrics
func LoggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start)
	code := status.Code(err)
	grpcRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
	grpcLatency.WithLabelValues(info.FullMethod).Observe(duration.Seconds())

	event := logger.Info(ctx)
	if code == codes.Internal || code == codes.Unavailable {
		event = logger.Error(ctx).Err(err)
	} else if err != nil {
		event = logger.Warn(ctx).Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("gRPC request completed")

	return resp, err
}

// AuthInterceptor validates the bearer token carried in the authorization metadata
func AuthInterceptor(tokens TokenValidator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "metadata not provided")
		}

		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "authorization token not provided")
		}

		token := strings.TrimPrefix(values[0], "Bearer ")
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, callerKey{}, Caller{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		return handler(ctx, req)
	}
}
