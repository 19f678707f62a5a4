package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/tair/stock-ledger/internal/config"
	identitydomain "github.com/tair/stock-ledger/internal/identity/domain"
	identityrepo "github.com/tair/stock-ledger/internal/identity/repository"
	identitycmd "github.com/tair/stock-ledger/internal/identity/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger"
	"github.com/tair/stock-ledger/internal/ledger/cache"
	grpcDelivery "github.com/tair/stock-ledger/internal/ledger/delivery/grpc"
	httpDelivery "github.com/tair/stock-ledger/internal/ledger/delivery/http"
	_ "github.com/tair/stock-ledger/internal/ledger/docs"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/events"
	"github.com/tair/stock-ledger/internal/ledger/repository"
	"github.com/tair/stock-ledger/pkg/auth"
	"github.com/tair/stock-ledger/pkg/database"
	"github.com/tair/stock-ledger/pkg/logger"
	"github.com/tair/stock-ledger/pkg/tracing"
)

const serviceVersion = "1.0.0"

// infrastructure is the set of backing services chosen by configuration
type infrastructure struct {
	repo      domain.LedgerRepository
	users     identitydomain.UserRepository
	publisher domain.EntryPublisher
	reports   domain.ReportCache
	guard     domain.RequestGuard
	limiter   httpDelivery.RateLimiter
	closers   []func() error
}

func (i *infrastructure) close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to close resource")
		}
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting stock ledger service")

	// Initialize tracer
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.ServiceName, serviceVersion, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
			tracing.InitPropagator()
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(ctx, tp); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
				}
			}()
		}
	} else {
		tracing.InitPropagator()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := buildInfrastructure(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize infrastructure")
	}
	defer infra.close()

	location, err := cfg.Location()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Invalid report timezone")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.ServiceName)

	// Initialize application with Wire DI
	app, err := ledger.InitializeApplication(
		infra.repo, infra.users, infra.publisher, infra.reports, infra.guard, tokens, location,
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if err := ensureAdmin(ctx, cfg, app.Accounts); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}

	if cfg.Kafka.ConsumerEnabled && len(cfg.Kafka.Brokers) > 0 {
		consumer, err := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
		}
		defer consumer.Close()

		app.Dispatcher.Register(consumer)
		go consumer.Start(ctx)
	}

	httpServer := newHTTPServer(cfg, app.HTTP, infra.limiter)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTP.Port).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	grpcServer := newGRPCServer(app.GRPC, tokens)
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("port", cfg.GRPC.Port).Msg("Failed to listen")
		}

		logger.Logger.Info().
			Str("port", cfg.GRPC.Port).
			Bool("reflection", true).
			Msg("gRPC server started")

		if err := grpcServer.Serve(lis); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start gRPC server")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()
}

func buildInfrastructure(ctx context.Context, cfg *config.Config) (*infrastructure, error) {
	infra := &infrastructure{
		publisher: events.NopPublisher{},
		reports:   cache.NopCache{},
		guard:     cache.NewMemoryGuard(),
	}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewGormConnection(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		infra.closers = append(infra.closers, sqlDB.Close)

		ledgerRepo := repository.NewGormLedgerRepository(db)
		if err := ledgerRepo.AutoMigrate(); err != nil {
			return nil, err
		}
		userRepo := identityrepo.NewGormUserRepository(db)
		if err := userRepo.AutoMigrate(); err != nil {
			return nil, err
		}

		infra.repo = repository.NewTracingLedgerRepository(ledgerRepo)
		infra.users = userRepo
		logger.Logger.Info().Str("database", cfg.Database.DBName).Msg("Database initialized successfully")
	default:
		infra.repo = repository.NewTracingLedgerRepository(repository.NewMemoryLedgerRepository())
		infra.users = identityrepo.NewMemoryUserRepository()
		logger.Logger.Warn().Msg("Using in-memory storage; data is lost on restart")
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		infra.closers = append(infra.closers, client.Close)

		redisCache := cache.NewRedisCache(client, cfg.Redis.CacheTTL)
		infra.reports = redisCache
		infra.guard = redisCache
		if cfg.HTTP.RateLimit > 0 {
			infra.limiter = cache.NewRedisRateLimiter(client, cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)
		}
		logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis report cache enabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			return nil, err
		}
		infra.closers = append(infra.closers, publisher.Close)
		infra.publisher = publisher
		logger.Logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka entry publisher enabled")
	}

	return infra, nil
}

func ensureAdmin(ctx context.Context, cfg *config.Config, accounts *identitycmd.Handlers) error {
	if cfg.Auth.AdminUsername == "" {
		return nil
	}

	created, err := accounts.EnsureAdmin.Handle(ctx, identitycmd.EnsureAdminCommand{
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Logger.Info().Str("username", cfg.Auth.AdminUsername).Msg("Bootstrap admin account created")
	}
	return nil
}

func newHTTPServer(cfg *config.Config, handler *httpDelivery.LedgerHandler, limiter httpDelivery.RateLimiter) *http.Server {
	router := mux.NewRouter()

	middlewareConfig := httpDelivery.DefaultMiddlewareConfig(cfg.HTTP.Timeout)
	middlewareConfig.RateLimiter = limiter
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           httpDelivery.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newGRPCServer(server *grpcDelivery.LedgerServer, tokens *auth.TokenManager) *grpc.Server {
	// Create gRPC server with interceptors
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcDelivery.LoggingInterceptor,
			grpcDelivery.AuthInterceptor(tokens),
		),
	)

	grpcDelivery.RegisterLedgerServiceServer(grpcServer, server)

	// Register reflection service (for grpcurl and grpc tools)
	reflection.Register(grpcServer)

	return grpcServer
}
