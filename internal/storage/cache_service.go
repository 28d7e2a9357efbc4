package storage

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/types"
)

// CacheService provides high-level caching for chain reads. All methods
// degrade gracefully: a cache failure is logged and reported as a miss so
// callers fall through to the source of truth.
type CacheService struct {
	redis        *RedisCache
	balanceTTL   time.Duration
	constantsTTL time.Duration
	rewardsTTL   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, balanceTTL, constantsTTL, rewardsTTL time.Duration) *CacheService {
	return &CacheService{
		redis:        redis,
		balanceTTL:   balanceTTL,
		constantsTTL: constantsTTL,
		rewardsTTL:   rewardsTTL,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyBalance is for account balances
	CacheKeyBalance CacheKeyType = "balance"
	// CacheKeyConstants is for proxy pallet constants
	CacheKeyConstants CacheKeyType = "constants"
	// CacheKeyRewards is for reward event histories
	CacheKeyRewards CacheKeyType = "rewards"
)

// GenerateCacheKey generates a cache key for a given type and parameters
// Format: <type>:<param1>:<param2>:...
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, string(keyType))
	for _, param := range params {
		parts = append(parts, strings.ToLower(param))
	}
	return strings.Join(parts, ":")
}

// cachedBalance is the wire form of an AccountBalance. Amounts are decimal
// strings because encoding/json cannot round-trip big.Int reliably.
type cachedBalance struct {
	Free     string `json:"free"`
	Reserved string `json:"reserved"`
	Frozen   string `json:"frozen"`
}

type cachedConstants struct {
	ProxyDepositBase   string `json:"proxyDepositBase"`
	ProxyDepositFactor string `json:"proxyDepositFactor"`
}

type cachedReward struct {
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Era       int    `json:"era"`
	Timestamp int64  `json:"timestamp"`
	PoolID    *int   `json:"poolId,omitempty"`
}

func encodeAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func decodeAmount(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

// GetBalance retrieves a cached account balance. The second return value
// reports a hit.
func (c *CacheService) GetBalance(ctx context.Context, chain types.ChainID, account string) (*types.AccountBalance, bool) {
	var entry cachedBalance
	if !c.get(ctx, c.GenerateCacheKey(CacheKeyBalance, string(chain), account), &entry) {
		return nil, false
	}
	return &types.AccountBalance{
		Free:     decodeAmount(entry.Free),
		Reserved: decodeAmount(entry.Reserved),
		Frozen:   decodeAmount(entry.Frozen),
	}, true
}

// SetBalance caches an account balance
func (c *CacheService) SetBalance(ctx context.Context, chain types.ChainID, account string, balance *types.AccountBalance) {
	if balance == nil {
		return
	}
	entry := cachedBalance{
		Free:     encodeAmount(balance.Free),
		Reserved: encodeAmount(balance.Reserved),
		Frozen:   encodeAmount(balance.Frozen),
	}
	c.set(ctx, c.GenerateCacheKey(CacheKeyBalance, string(chain), account), entry, c.balanceTTL)
}

// GetConstants retrieves cached proxy pallet constants
func (c *CacheService) GetConstants(ctx context.Context, chain types.ChainID) (types.ChainConstants, bool) {
	var entry cachedConstants
	if !c.get(ctx, c.GenerateCacheKey(CacheKeyConstants, string(chain)), &entry) {
		return types.ChainConstants{}, false
	}
	return types.ChainConstants{
		ProxyDepositBase:   decodeAmount(entry.ProxyDepositBase),
		ProxyDepositFactor: decodeAmount(entry.ProxyDepositFactor),
	}, true
}

// SetConstants caches proxy pallet constants
func (c *CacheService) SetConstants(ctx context.Context, chain types.ChainID, constants types.ChainConstants) {
	entry := cachedConstants{
		ProxyDepositBase:   encodeAmount(constants.ProxyDepositBase),
		ProxyDepositFactor: encodeAmount(constants.ProxyDepositFactor),
	}
	c.set(ctx, c.GenerateCacheKey(CacheKeyConstants, string(chain)), entry, c.constantsTTL)
}

// GetRewards retrieves a cached reward history
func (c *CacheService) GetRewards(ctx context.Context, chain types.ChainID, account string) ([]types.RewardEvent, bool) {
	var entries []cachedReward
	if !c.get(ctx, c.GenerateCacheKey(CacheKeyRewards, string(chain), account), &entries) {
		return nil, false
	}

	events := make([]types.RewardEvent, len(entries))
	for i, entry := range entries {
		events[i] = types.RewardEvent{
			Address:   entry.Address,
			Amount:    decodeAmount(entry.Amount),
			AmountRaw: entry.Amount,
			Era:       entry.Era,
			Timestamp: entry.Timestamp,
			PoolID:    entry.PoolID,
		}
	}
	return events, true
}

// SetRewards caches a reward history
func (c *CacheService) SetRewards(ctx context.Context, chain types.ChainID, account string, events []types.RewardEvent) {
	entries := make([]cachedReward, len(events))
	for i, ev := range events {
		entries[i] = cachedReward{
			Address:   ev.Address,
			Amount:    encodeAmount(ev.Amount),
			Era:       ev.Era,
			Timestamp: ev.Timestamp,
			PoolID:    ev.PoolID,
		}
	}
	c.set(ctx, c.GenerateCacheKey(CacheKeyRewards, string(chain), account), entries, c.rewardsTTL)
}

// InvalidateRewards drops the cached reward history for an account
func (c *CacheService) InvalidateRewards(ctx context.Context, chain types.ChainID, account string) {
	key := c.GenerateCacheKey(CacheKeyRewards, string(chain), account)
	if err := c.redis.Del(ctx, key); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Cache invalidation failed")
	}
}

// get loads and unmarshals a key, reporting false on miss or any failure
func (c *CacheService) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Cache entry corrupt")
		return false
	}
	return true
}

// set marshals and stores a value, logging failures instead of returning them
func (c *CacheService) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Cache marshal failed")
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
