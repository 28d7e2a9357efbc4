// Package worker runs the background reward refresh loop that keeps the
// cache and the reward store warm for watched accounts.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/types"
)

// RewardRefresher is the service operation the worker drives
type RewardRefresher interface {
	Refresh(ctx context.Context, chain types.ChainID, account string) error
}

// WatchedAccount is a (chain, account) pair on the refresh schedule
type WatchedAccount struct {
	Chain   types.ChainID
	Account string
}

// RefreshWorker periodically refreshes reward histories for a watch list
type RefreshWorker struct {
	refresher RewardRefresher
	accounts  []WatchedAccount
	interval  time.Duration
	workers   int

	mu          sync.RWMutex
	running     bool
	lastRunTime time.Time
	lastErrors  int
	cycles      int

	stopCh chan struct{}
	doneCh chan struct{}
}

// RefreshWorkerConfig holds configuration for a refresh worker
type RefreshWorkerConfig struct {
	Refresher RewardRefresher
	Accounts  []WatchedAccount
	Interval  time.Duration // default: 10 minutes
	Workers   int           // concurrent refreshes, default: 4
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(cfg *RefreshWorkerConfig) (*RefreshWorker, error) {
	if cfg.Refresher == nil {
		return nil, fmt.Errorf("refresher cannot be nil")
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = 10 * time.Minute
	}
	if interval < time.Minute {
		return nil, fmt.Errorf("refresh interval must be at least one minute, got %v", interval)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	return &RefreshWorker{
		refresher: cfg.Refresher,
		accounts:  cfg.Accounts,
		interval:  interval,
		workers:   workers,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins the refresh loop
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	logging.WithFields(map[string]interface{}{
		"accounts": len(w.accounts),
		"interval": w.interval.String(),
		"workers":  w.workers,
	}).Info("Starting reward refresh worker")

	go w.loop(ctx)

	return nil
}

// Stop gracefully stops the refresh worker
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is not running")
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		logging.Info("Reward refresh worker stopped")
	case <-ctx.Done():
		logging.Warn("Reward refresh worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

// loop runs refresh cycles until stopped. The first cycle runs immediately
// so a fresh deployment serves warm data without waiting a full interval.
func (w *RefreshWorker) loop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runCycle(ctx)

	for {
		select {
		case <-ticker.C:
			w.runCycle(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runCycle refreshes every watched account with bounded concurrency
func (w *RefreshWorker) runCycle(ctx context.Context) {
	if len(w.accounts) == 0 {
		return
	}

	start := time.Now()
	jobs := make(chan WatchedAccount)
	var failures sync.Map
	var wg sync.WaitGroup

	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for acct := range jobs {
				if err := w.refresher.Refresh(ctx, acct.Chain, acct.Account); err != nil {
					logging.WithFields(map[string]interface{}{
						"chain":   acct.Chain,
						"account": acct.Account,
						"error":   err.Error(),
					}).Warn("Reward refresh failed")
					failures.Store(acct, struct{}{})
				}
			}
		}()
	}

	for _, acct := range w.accounts {
		select {
		case jobs <- acct:
		case <-w.stopCh:
			close(jobs)
			wg.Wait()
			return
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	failures.Range(func(key, value interface{}) bool {
		failed++
		return true
	})

	w.mu.Lock()
	w.lastRunTime = start
	w.lastErrors = failed
	w.cycles++
	w.mu.Unlock()

	logging.WithFields(map[string]interface{}{
		"accounts": len(w.accounts),
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Info("Reward refresh cycle completed")
}

// Stats is a point-in-time snapshot of the worker
type Stats struct {
	Running     bool      `json:"running"`
	Accounts    int       `json:"accounts"`
	Cycles      int       `json:"cycles"`
	LastRunTime time.Time `json:"lastRunTime"`
	LastErrors  int       `json:"lastErrors"`
}

// GetStats returns a snapshot of the worker state
func (w *RefreshWorker) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Stats{
		Running:     w.running,
		Accounts:    len(w.accounts),
		Cycles:      w.cycles,
		LastRunTime: w.lastRunTime,
		LastErrors:  w.lastErrors,
	}
}
