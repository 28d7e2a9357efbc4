// Package main provides the reward refresh worker entry point.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/substrate-wallet-core/internal/adapter"
	"github.com/substrate-wallet-core/internal/config"
	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/service"
	"github.com/substrate-wallet-core/internal/storage"
	"github.com/substrate-wallet-core/internal/types"
	"github.com/substrate-wallet-core/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()

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

	rewardRepo := storage.NewRewardRepository(postgres)
	cacheService := storage.NewCacheService(redis, cfg.Cache.BalanceTTL, cfg.Cache.ConstantsTTL, cfg.Cache.RewardsTTL)

	endpoints := make(map[types.ChainID]string, len(cfg.Subscan.Endpoints))
	for chain, url := range cfg.Subscan.Endpoints {
		endpoints[types.ChainID(chain)] = url
	}
	subscan := adapter.NewSubscanClient(endpoints, cfg.Subscan.APIKey, cfg.Subscan.RequestsPerSecond)

	decimals := make(map[types.ChainID]int, len(cfg.Chains.Chains))
	for chain, chainCfg := range cfg.Chains.Chains {
		decimals[types.ChainID(chain)] = chainCfg.Decimals
	}

	rewardsService := service.NewRewardsService(subscan, rewardRepo, cacheService, decimals)

	accounts := parseWatchList(cfg.Worker.WatchAccounts, logger)
	if len(accounts) == 0 {
		logger.Warn("Watch list is empty - worker will idle")
	}

	refreshWorker, err := worker.NewRefreshWorker(&worker.RefreshWorkerConfig{
		Refresher: rewardsService,
		Accounts:  accounts,
		Interval:  cfg.Worker.RefreshInterval,
		Workers:   cfg.Worker.Concurrency,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create refresh worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := refreshWorker.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start refresh worker")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Stopping refresh worker...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := refreshWorker.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Refresh worker stop failed")
	}

	logger.Info("Worker exited")
}

// parseWatchList parses "chain:account" entries from the configured list.
// Entries without a chain prefix default to Polkadot.
func parseWatchList(entries []string, logger *logging.Logger) []worker.WatchedAccount {
	var accounts []worker.WatchedAccount
	for _, entry := range entries {
		chain := types.ChainPolkadot
		account := entry
		if idx := strings.IndexByte(entry, ':'); idx >= 0 {
			chain = types.ChainID(entry[:idx])
			account = entry[idx+1:]
		}
		if account == "" {
			logger.WithField("entry", entry).Warn("Skipping malformed watch list entry")
			continue
		}
		accounts = append(accounts, worker.WatchedAccount{Chain: chain, Account: account})
	}
	return accounts
}
