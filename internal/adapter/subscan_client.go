package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/substrate-wallet-core/internal/circuitbreaker"
	"github.com/substrate-wallet-core/internal/types"
)

// SubscanClient fetches staking reward history from the Subscan indexer.
// Requests go through a token-bucket limiter (Subscan free tier allows a few
// requests per second) and a circuit breaker so a failing indexer does not
// pile up requests.
type SubscanClient struct {
	endpoints map[types.ChainID]string
	apiKey    string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *circuitbreaker.CircuitBreaker
}

// RewardRowCap is the fixed page size requested from Subscan
const RewardRowCap = 100

// maxRewardPages bounds how far back a single fetch walks the indexer
const maxRewardPages = 10

// NewSubscanClient creates a new Subscan API client. endpoints maps each
// chain to its Subscan base URL (e.g. https://polkadot.api.subscan.io).
func NewSubscanClient(endpoints map[types.ChainID]string, apiKey string, requestsPerSecond float64) *SubscanClient {
	return &SubscanClient{
		endpoints: endpoints,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		breaker:   circuitbreaker.New(circuitbreaker.DefaultConfig("subscan")),
	}
}

// subscanRewardRequest is the reward_slash request body
type subscanRewardRequest struct {
	Address string `json:"address"`
	Row     int    `json:"row"`
	Page    int    `json:"page"`
}

// subscanRewardRow is a single reward record in the Subscan response
type subscanRewardRow struct {
	Era            int    `json:"era"`
	Amount         string `json:"amount"`
	BlockTimestamp int64  `json:"block_timestamp"`
	EventID        string `json:"event_id"`
	ModuleID       string `json:"module_id"`
	PoolID         *int   `json:"pool_id,omitempty"`
}

// subscanRewardResponse is the reward_slash response envelope
type subscanRewardResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    *struct {
		Count int                `json:"count"`
		List  []subscanRewardRow `json:"list"`
	} `json:"data"`
}

// RewardHistory fetches the reward events for an account, walking the
// indexer's pages up to the row cap. A null list from the indexer is the
// resolved-empty answer and returns (nil, nil); transport and API errors
// return a non-nil error.
func (c *SubscanClient) RewardHistory(ctx context.Context, chain types.ChainID, account string) ([]types.RewardEvent, error) {
	endpoint, ok := c.endpoints[chain]
	if !ok {
		return nil, fmt.Errorf("no subscan endpoint configured for chain %s", chain)
	}

	var events []types.RewardEvent
	sawList := false

	for page := 0; page < maxRewardPages; page++ {
		rows, err := c.fetchPage(ctx, endpoint, account, page)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			break
		}
		sawList = true

		for _, row := range rows {
			// reward_slash mixes slashes in; only Reward events count.
			if row.EventID != "" && row.EventID != "Reward" && row.EventID != "Rewarded" {
				continue
			}
			amount := new(big.Int)
			if _, ok := amount.SetString(row.Amount, 10); !ok {
				return nil, fmt.Errorf("malformed reward amount %q from subscan", row.Amount)
			}
			events = append(events, types.RewardEvent{
				Address:   account,
				Amount:    amount,
				AmountRaw: amount.String(),
				Era:       row.Era,
				Timestamp: row.BlockTimestamp,
				PoolID:    row.PoolID,
			})
		}

		if len(rows) < RewardRowCap {
			break
		}
	}

	if !sawList {
		return nil, nil
	}
	if events == nil {
		events = []types.RewardEvent{}
	}
	return events, nil
}

// fetchPage requests one page of reward history. A null data.list is
// reported as (nil, nil).
func (c *SubscanClient) fetchPage(ctx context.Context, endpoint, account string, page int) ([]subscanRewardRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	body, err := json.Marshal(subscanRewardRequest{
		Address: account,
		Row:     RewardRowCap,
		Page:    page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscan request: %w", err)
	}

	var parsed subscanRewardResponse
	err = c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/api/scan/account/reward_slash", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build subscan request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("subscan request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("subscan returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read subscan response: %w", err)
		}
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("failed to decode subscan response: %w", err)
		}
		if parsed.Code != 0 {
			return fmt.Errorf("subscan error %d: %s", parsed.Code, parsed.Message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if parsed.Data == nil || parsed.Data.List == nil {
		return nil, nil
	}
	return parsed.Data.List, nil
}

// BreakerStats exposes the indexer circuit breaker state for the health
// endpoint.
func (c *SubscanClient) BreakerStats() *circuitbreaker.Stats {
	return c.breaker.GetStats()
}
