package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	slogzap "github.com/samber/slog-zap/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"rebalancer/internal/app/pipeline"
	"rebalancer/internal/app/port"
	"rebalancer/internal/app/service"
	"rebalancer/internal/infrastructure/allocparser"
	"rebalancer/internal/infrastructure/chains"
	"rebalancer/internal/infrastructure/configloader"
	"rebalancer/internal/infrastructure/evmrpc"
	"rebalancer/internal/infrastructure/oracle"
	"rebalancer/internal/infrastructure/restapi"
	"rebalancer/internal/infrastructure/tokenindexer"
	"rebalancer/internal/pkg/logger"
	"rebalancer/internal/pkg/metrics"
)

func main() {
	// Bootstrap logger for the pre-config phase.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on process environment")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yml"
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}
	log.WithField("path", cfgPath).Info("Configuration loaded")

	// Main logger: zap behind the global slog front.
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := slogzap.Option{
		Level:  slogLevel(cfg.Logging.Level),
		Logger: zapLogger,
	}.NewZapHandler()
	logger.SetLogger(slog.New(slogHandler))

	appLogger := logger.NewSlogAdapter()
	logger.Info("Rebalancing service starting", "logLevel", cfg.Logging.Level)

	metrics.MustRegisterMetrics()

	// Infrastructure wiring.
	chainProvider := chains.NewProvider(appLogger, cfg.Chains)

	indexerClient := tokenindexer.NewClient(tokenindexer.Config{
		BaseURL:           cfg.Indexer.BaseURL,
		APIKey:            cfg.Indexer.APIKey,
		RequestTimeout:    time.Duration(cfg.Indexer.RequestTimeoutMillis) * time.Millisecond,
		RequestsPerSecond: cfg.Indexer.RequestsPerSecond,
	}, appLogger)

	rpcSource := evmrpc.NewSource(chainProvider, appLogger)

	priceOracle := oracle.NewTickerClient(oracle.Config{
		BaseURL:           cfg.Oracle.BaseURL,
		QuoteAsset:        cfg.Oracle.QuoteAsset,
		RequestTimeout:    time.Duration(cfg.Oracle.RequestTimeoutMillis) * time.Millisecond,
		CacheTTL:          time.Duration(cfg.Oracle.CacheTTLSeconds) * time.Second,
		RequestsPerSecond: cfg.Oracle.RequestsPerSecond,
	}, appLogger)

	allocationParser := buildAllocationParser(cfg, appLogger)

	analysisPipeline := pipeline.New(
		chainProvider,
		indexerClient,
		rpcSource,
		priceOracle,
		rpcSource,
		appLogger,
		pipeline.Config{
			CallTimeout:           time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second,
			MaxConcurrentRoutines: cfg.Performance.MaxConcurrentRoutines,
		},
	)

	store := service.NewMemStore(cfg.Performance.StoreCapacity)
	strategyService := service.NewStrategyService(analysisPipeline, allocationParser, store, appLogger)

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Monitor.Enabled {
		monitor := service.NewMonitor(strategyService, appLogger,
			time.Duration(cfg.Monitor.IntervalSeconds)*time.Second)
		go monitor.Run(appCtx)
	}

	// HTTP API.
	apiHandler := restapi.NewHandler(strategyService, allocationParser, chainProvider, appLogger)
	router := restapi.SetupRouter(apiHandler, restapi.RouterOptions{
		SwaggerEnabled: cfg.Swagger.Enabled,
		SwaggerSpec:    cfg.Swagger.Spec,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received, stopping HTTP server")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Performance.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}

	logger.Info("Rebalancing service stopped")
}

func buildAllocationParser(cfg *configloader.Config, appLogger port.Logger) port.AllocationParser {
	textParser := allocparser.NewTextParser(appLogger)
	if cfg.Parser.Mode != "llm" {
		return textParser
	}
	if cfg.Parser.OpenAIAPIKey == "" {
		logger.Warn("Parser mode is llm but no OpenAI API key is set, using lexical parser")
		return textParser
	}
	return allocparser.NewLLMParser(cfg.Parser.OpenAIAPIKey, cfg.Parser.Model, textParser, appLogger)
}

func slogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
