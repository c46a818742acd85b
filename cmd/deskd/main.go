package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tradedesk/deskd/internal/application/actions"
	"github.com/tradedesk/deskd/internal/application/orchestrator"
	"github.com/tradedesk/deskd/internal/config"
	"github.com/tradedesk/deskd/internal/registry"
	redisevents "github.com/tradedesk/deskd/pkg/adapters/events/redis"
	"github.com/tradedesk/deskd/pkg/adapters/gateway/httpgw"
	"github.com/tradedesk/deskd/pkg/adapters/metrics/prometheus"
	redisstorage "github.com/tradedesk/deskd/pkg/adapters/storage/redis"
	"github.com/tradedesk/deskd/pkg/adapters/view"
	"github.com/tradedesk/deskd/pkg/api/grpc"
	"github.com/tradedesk/deskd/pkg/api/http"
	"github.com/tradedesk/deskd/pkg/api/websocket"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting deskd",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	// Load the tab registry
	tabRegistry, err := registry.LoadFile(cfg.TabsFile)
	if err != nil {
		logger.Fatal("failed to load tab registry",
			zap.String("file", cfg.TabsFile),
			zap.Error(err))
	}
	logger.Info("tab registry loaded",
		zap.String("file", cfg.TabsFile),
		zap.Int("tabs", tabRegistry.Len()))

	// Initialize Redis client
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize adapters
	eventBus, err := redisevents.NewStreamsEventBus(
		redisClient,
		"deskd-clients",
		fmt.Sprintf("deskd-%d", os.Getpid()),
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create event bus", zap.Error(err))
	}

	snapshotStore := redisstorage.NewSnapshotStore(
		redisClient,
		cfg.Timeouts.SnapshotTTL,
		logger,
	)

	gatewayClient, err := httpgw.NewClient(&httpgw.Config{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.RequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("failed to create gateway client", zap.Error(err))
	}

	prober := httpgw.NewProber(gatewayClient, cfg.Gateway.HealthInterval, logger)
	prober.Start()

	metricsCollector := prometheus.NewCollector()

	// Initialize application components
	views := view.NewBusViews(tabRegistry, eventBus, logger)

	orchestratorMgr := orchestrator.NewManager(
		tabRegistry,
		gatewayClient,
		views,
		eventBus,
		snapshotStore,
		metricsCollector,
		logger,
	)

	dispatcher := actions.NewDispatcher(gatewayClient, metricsCollector, logger)
	if err := registerActions(dispatcher); err != nil {
		logger.Fatal("failed to register actions", zap.Error(err))
	}

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:         cfg.HTTPPort,
		Orchestrator: orchestratorMgr,
		Dispatcher:   dispatcher,
		Registry:     tabRegistry,
		Prober:       prober,
		Logger:       logger,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler)

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:   cfg.GRPCPort,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("deskd started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("tabs", tabRegistry.Len()))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// A running execution is abandoned at the next tab boundary
	orchestratorMgr.Abort()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	// Shutdown components
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	prober.Stop()

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("Redis close error", zap.Error(err))
	}

	logger.Info("deskd shut down complete")
}

// registerActions declares the desk actions exposed through the HTTP API.
// Each schema drives both validation and the generated form.
func registerActions(d *actions.Dispatcher) error {
	declared := []actions.Action{
		{
			Name:     "submit-order",
			Endpoint: "/api/orders",
			Schema: actions.Schema{
				"symbol": {Kind: actions.KindText, Label: "Symbol", Required: true},
				"side": {
					Kind:     actions.KindEnum,
					Label:    "Side",
					Required: true,
					Options:  []string{"buy", "sell"},
				},
				"quantity":    {Kind: actions.KindInt, Label: "Quantity", Required: true},
				"limit_price": {Kind: actions.KindFloat, Label: "Limit Price", Optional: true},
				"good_till":   {Kind: actions.KindDate, Label: "Good Till", Optional: true},
				"all_or_none": {Kind: actions.KindBool, Label: "All or None", Default: false},
			},
		},
		{
			Name:     "cancel-order",
			Endpoint: "/api/orders/cancel",
			Schema: actions.Schema{
				"order_id": {Kind: actions.KindText, Label: "Order ID", Required: true},
				"reason": {
					Kind:    actions.KindEnum,
					Label:   "Reason",
					Default: "user_request",
					Options: []string{"user_request", "risk_limit", "fat_finger"},
				},
			},
		},
	}

	for _, action := range declared {
		if err := d.Register(action); err != nil {
			return err
		}
	}
	return nil
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
