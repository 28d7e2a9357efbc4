package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/storage"
	"github.com/substrate-wallet-core/internal/types"
)

// RewardHistoryProvider supplies raw reward events for an account. A nil
// event slice with a nil error is the indexer's explicit resolved-empty
// answer, distinct from an empty slice.
type RewardHistoryProvider interface {
	RewardHistory(ctx context.Context, chain types.ChainID, account string) ([]types.RewardEvent, error)
}

// RewardEventStore persists fetched reward events so refreshes and the
// background worker avoid refetching full history.
type RewardEventStore interface {
	UpsertEvents(ctx context.Context, chain types.ChainID, events []types.RewardEvent) error
	GetByAccount(ctx context.Context, chain types.ChainID, account string) ([]types.RewardEvent, error)
}

// RewardsService fetches reward history, aggregates it into periods, and
// serves paginated reports. Fetches are keyed by (chain, account); when a
// newer fetch has been issued for the same key, a stale in-flight result is
// not written back to the cache or the store.
type RewardsService struct {
	provider RewardHistoryProvider
	store    RewardEventStore
	cache    *storage.CacheService
	decimals map[types.ChainID]int

	mu     sync.Mutex
	latest map[string]uint64
}

// NewRewardsService creates a new rewards service
func NewRewardsService(provider RewardHistoryProvider, store RewardEventStore, cache *storage.CacheService, decimals map[types.ChainID]int) *RewardsService {
	return &RewardsService{
		provider: provider,
		store:    store,
		cache:    cache,
		decimals: decimals,
		latest:   make(map[string]uint64),
	}
}

// RewardReport is the renderable outcome of a reward query
type RewardReport struct {
	Status       types.FetchStatus   `json:"status"`
	ChartData    []types.DayBucket   `json:"chartData,omitempty"`
	DateInterval string              `json:"dateInterval,omitempty"`
	PageIndex    int                 `json:"pageIndex"`
	PeriodCount  int                 `json:"periodCount"`
	Rewards      []types.RewardEvent `json:"descSortedRewards,omitempty"`
}

// GetRewards returns the aggregated reward report for an account at the
// requested period index. Fetch failures and indexer resolved-empty results
// yield an error-status report, not a propagated error; no automatic retry
// is attempted.
func (s *RewardsService) GetRewards(ctx context.Context, chain types.ChainID, account string, interval, page int) (*RewardReport, error) {
	if interval != IntervalCompact && interval != IntervalExpanded {
		return nil, &types.ServiceError{
			Code:    "INVALID_INTERVAL",
			Message: fmt.Sprintf("interval must be %d or %d", IntervalCompact, IntervalExpanded),
		}
	}

	events, ok := s.fetch(ctx, chain, account)
	if !ok {
		return &RewardReport{Status: types.StatusError}, nil
	}

	report := s.buildReport(events, s.chainDecimals(chain), interval, page)
	return report, nil
}

// Refresh re-fetches an account's reward history and repopulates the cache
// and the store. Used by the background worker and manual refreshes.
func (s *RewardsService) Refresh(ctx context.Context, chain types.ChainID, account string) error {
	if _, ok := s.fetch(ctx, chain, account); !ok {
		return fmt.Errorf("reward refresh failed for %s on %s", account, chain)
	}
	return nil
}

// fetch resolves the event list for a key, preferring the cache. A result
// that arrived stale (a newer fetch was issued for the same key meanwhile)
// still answers its own request but is not written back to the cache or the
// store.
func (s *RewardsService) fetch(ctx context.Context, chain types.ChainID, account string) (events []types.RewardEvent, ok bool) {
	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"chain":   chain,
		"account": account,
	})

	if s.cache != nil {
		if cached, hit := s.cache.GetRewards(ctx, chain, account); hit {
			return cached, true
		}
	}

	seq := s.beginFetch(chain, account)

	events, err := s.provider.RewardHistory(ctx, chain, account)
	if err != nil {
		logger.WithError(err).Error("Reward history fetch failed")
		return nil, false
	}
	if events == nil {
		// The indexer resolved with an explicit empty result.
		logger.Warn("Reward history resolved empty")
		return nil, false
	}

	if !s.isLatest(chain, account, seq) {
		logger.Debug("Skipping writeback for stale reward fetch")
		return events, true
	}

	if s.store != nil {
		if err := s.store.UpsertEvents(ctx, chain, events); err != nil {
			logger.WithError(err).Warn("Failed to persist reward events")
		}
	}
	if s.cache != nil {
		s.cache.SetRewards(ctx, chain, account, events)
	}
	return events, true
}

// buildReport aggregates events into the pager shape at the requested page
func (s *RewardsService) buildReport(events []types.RewardEvent, decimals, interval, page int) *RewardReport {
	pager := NewRewardPager(events, decimals, interval)
	pager.SetPageIndex(page)

	desc := SortRewardEvents(events)
	for i, j := 0, len(desc)-1; i < j; i, j = i+1, j-1 {
		desc[i], desc[j] = desc[j], desc[i]
	}
	for i := range desc {
		if desc[i].Amount != nil {
			desc[i].AmountRaw = desc[i].Amount.String()
		}
	}

	return &RewardReport{
		Status:       types.StatusReady,
		ChartData:    pager.Current(),
		DateInterval: pager.Label(),
		PageIndex:    pager.PageIndex(),
		PeriodCount:  pager.PeriodCount(),
		Rewards:      desc,
	}
}

// StoredRewards serves the persisted event history without touching the
// indexer. Used by the debug CLI.
func (s *RewardsService) StoredRewards(ctx context.Context, chain types.ChainID, account string) ([]types.RewardEvent, error) {
	if s.store == nil {
		return nil, fmt.Errorf("reward event store not configured")
	}
	events, err := s.store.GetByAccount(ctx, chain, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored rewards: %w", err)
	}
	sorted := SortRewardEvents(events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp > sorted[j].Timestamp })
	return sorted, nil
}

func (s *RewardsService) chainDecimals(chain types.ChainID) int {
	if d, ok := s.decimals[chain]; ok {
		return d
	}
	return 10
}

func rewardKey(chain types.ChainID, account string) string {
	return string(chain) + ":" + account
}

// beginFetch registers a new fetch for a key and returns its sequence number
func (s *RewardsService) beginFetch(chain types.ChainID, account string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rewardKey(chain, account)
	s.latest[key]++
	return s.latest[key]
}

// isLatest reports whether seq is still the newest fetch for its key
func (s *RewardsService) isLatest(chain types.ChainID, account string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[rewardKey(chain, account)] == seq
}
