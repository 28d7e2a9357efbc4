// Package main provides a debug CLI that fetches an account's reward
// history and prints the aggregated period view.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/substrate-wallet-core/internal/adapter"
	"github.com/substrate-wallet-core/internal/config"
	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/service"
	"github.com/substrate-wallet-core/internal/types"
)

func main() {
	var (
		chainName = flag.String("chain", "polkadot", "Chain to query")
		account   = flag.String("account", "", "Account address (SS58 public key hex)")
		interval  = flag.Int("interval", service.IntervalCompact, "Days per period (10 or 15)")
	)
	flag.Parse()

	if *account == "" {
		log.Fatal("Usage: rewards_check -account <address> [-chain polkadot] [-interval 10]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitGlobalLogger(logging.LevelWarn, logging.FormatText)

	chain := types.ChainID(*chainName)
	chainCfg, ok := cfg.Chains.Chains[*chainName]
	if !ok {
		log.Fatalf("Chain %s is not configured", *chainName)
	}

	endpoints := map[types.ChainID]string{chain: cfg.Subscan.Endpoints[*chainName]}
	subscan := adapter.NewSubscanClient(endpoints, cfg.Subscan.APIKey, cfg.Subscan.RequestsPerSecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("Fetching reward history for %s on %s...\n", *account, chain)
	events, err := subscan.RewardHistory(ctx, chain, *account)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	if events == nil {
		fmt.Println("Indexer resolved with no reward history.")
		return
	}

	fmt.Printf("Fetched %d reward events\n\n", len(events))

	pager := service.NewRewardPager(events, chainCfg.Decimals, *interval)
	for page := 0; page < pager.PeriodCount(); page++ {
		pager.SetPageIndex(page)
		fmt.Printf("Period %d: %s\n", page, pager.Label())
		for _, bucket := range pager.Current() {
			marker := " "
			if bucket.Amount != nil && bucket.Amount.Sign() > 0 {
				marker = "*"
			}
			fmt.Printf("  %s %-14s %s %s\n", marker, bucket.Date, bucket.AmountInHuman, chainCfg.Token)
		}
		fmt.Println()
	}
}
