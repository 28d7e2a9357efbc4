// Package main provides the API server entry point for the wallet backend.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/substrate-wallet-core/internal/adapter"
	"github.com/substrate-wallet-core/internal/api"
	"github.com/substrate-wallet-core/internal/config"
	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/service"
	"github.com/substrate-wallet-core/internal/storage"
	"github.com/substrate-wallet-core/internal/types"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	logger.Info("Initializing chain adapters...")
	ctx := context.Background()
	chainAdapters, decimals := buildChainAdapters(ctx, cfg, logger)
	if len(chainAdapters) == 0 {
		logger.Warn("No chain adapters initialized - chain reads will fail")
	}

	rewardRepo := storage.NewRewardRepository(postgres)
	cacheService := storage.NewCacheService(redis, cfg.Cache.BalanceTTL, cfg.Cache.ConstantsTTL, cfg.Cache.RewardsTTL)

	subscan := adapter.NewSubscanClient(subscanEndpoints(cfg), cfg.Subscan.APIKey, cfg.Subscan.RequestsPerSecond)
	prices := adapter.NewPriceClient(cfg.Fiat.BaseURL)

	logger.Info("Initializing services...")

	balanceService := service.NewBalanceService(chainAdapters, cacheService)
	payabilityService := service.NewPayabilityService(chainAdapters, cacheService)
	rewardsService := service.NewRewardsService(subscan, rewardRepo, cacheService, decimals)
	proxyService := service.NewProxyService(chainAdapters, cacheService, payabilityService)

	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, payabilityService, rewardsService, proxyService, balanceService, prices)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// buildChainAdapters connects to every enabled chain, skipping chains whose
// node cannot be reached at startup.
func buildChainAdapters(ctx context.Context, cfg *config.Config, logger *logging.Logger) (map[types.ChainID]adapter.ChainAdapter, map[types.ChainID]int) {
	adapters := make(map[types.ChainID]adapter.ChainAdapter)
	decimals := make(map[types.ChainID]int)

	for _, chainName := range cfg.Chains.Enabled {
		chainCfg, ok := cfg.Chains.Chains[chainName]
		if !ok || chainCfg.RPCURL == "" {
			logger.WithField("chain", chainName).Warn("Skipping chain: no RPC endpoint configured")
			continue
		}

		chainID := types.ChainID(chainName)
		switch chainID {
		case types.ChainPolkadot, types.ChainKusama, types.ChainWestend:
		default:
			logger.WithField("chain", chainName).Warn("Skipping unknown chain")
			continue
		}

		chainAdapter, err := adapter.NewSubstrateAdapter(ctx, chainID, chainCfg.RPCURL)
		if err != nil {
			logger.WithError(err).WithField("chain", chainName).Warn("Failed to create adapter for chain")
			continue
		}

		adapters[chainID] = chainAdapter
		decimals[chainID] = chainCfg.Decimals
		logger.WithFields(map[string]interface{}{
			"chain": chainName,
			"rpc":   chainCfg.RPCURL,
		}).Info("Chain adapter initialized")
	}

	return adapters, decimals
}

// subscanEndpoints converts configured endpoints to chain-keyed form
func subscanEndpoints(cfg *config.Config) map[types.ChainID]string {
	endpoints := make(map[types.ChainID]string, len(cfg.Subscan.Endpoints))
	for chain, url := range cfg.Subscan.Endpoints {
		endpoints[types.ChainID(chain)] = url
	}
	return endpoints
}
