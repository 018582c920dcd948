package main

import (
	"context"
	"fmt"
	"os"

	"crypto-trading-bot/internal/api"
	"crypto-trading-bot/internal/consensus"
	"crypto-trading-bot/internal/consensus/consensusobs"
	"crypto-trading-bot/internal/feed/static"
	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/metrics"
	"crypto-trading-bot/internal/opinion/noop"
	"crypto-trading-bot/internal/opinion/opinionobs"
	"crypto-trading-bot/internal/risk"
	"crypto-trading-bot/internal/risk/riskobs"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes logger, tracer, and the metrics registry
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	// Register Prometheus collectors
	metrics.Init()

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeFeeds returns the market/technical/sentiment data feed. Only the
// static feed is implemented; LIVE exchange connectivity belongs to external
// collaborators, so LIVE mode is refused at startup.
func initializeFeeds(ctx context.Context, cfg *store.Config) (*static.Feed, error) {
	if cfg.Mode == "LIVE" {
		return nil, fmt.Errorf("LIVE mode requires live market feeds, none are configured")
	}

	logger.Warn(ctx, "Running in DRY_RUN mode - trades will be simulated")
	logger.Info(ctx, "Using STATIC feed data", "symbols", len(cfg.Symbols))

	return static.New(cfg.Feeds.StaticPrices), nil
}

// initializeProviders builds one opinion provider per configured name, each
// wrapped with observability middleware. Until real analyst integrations are
// wired, every provider is a noop that abstains with zero confidence.
func initializeProviders(ctx context.Context, cfg *store.Config) []interfaces.OpinionProvider {
	providers := make([]interfaces.OpinionProvider, 0, len(cfg.Opinion.Providers))
	for _, name := range cfg.Opinion.Providers {
		providers = append(providers, opinionobs.Wrap(noop.New(name)))
	}

	logger.Info(ctx, "Opinion providers configured", "count", len(providers))
	return providers
}

// initializeConsensus initializes the consensus engine with observability
func initializeConsensus(cfg *store.Config) interfaces.Consensus {
	return consensusobs.Wrap(consensus.New(cfg))
}

// initializeRisk initializes the risk manager with observability
func initializeRisk(cfg *store.Config) interfaces.Risk {
	return riskobs.Wrap(risk.New(cfg))
}

// initializeAPI starts the status API when enabled, returning nil otherwise.
func initializeAPI(ctx context.Context, cfg *store.Config, rm interfaces.Risk) *api.Server {
	if !cfg.API.Enabled {
		return nil
	}

	srv := api.NewServer(cfg.API.ListenAddr, rm)
	srv.Start(ctx)
	return srv
}
