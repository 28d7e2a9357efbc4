package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/substrate-wallet-core/internal/types"
)

// PriceClient fetches native token prices from the CoinGecko simple-price
// API for optional fiat decoration of reward totals.
type PriceClient struct {
	baseURL string
	client  *http.Client
}

// coinIDByChain maps chains to their CoinGecko coin identifiers
var coinIDByChain = map[types.ChainID]string{
	types.ChainPolkadot: "polkadot",
	types.ChainKusama:   "kusama",
}

// NewPriceClient creates a new CoinGecko client. An empty baseURL selects
// the public API.
func NewPriceClient(baseURL string) *PriceClient {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &PriceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Price returns the native token price in the given fiat currency
// (e.g. "usd"). Chains without a listed token return an error.
func (c *PriceClient) Price(ctx context.Context, chain types.ChainID, fiat string) (float64, error) {
	coinID, ok := coinIDByChain[chain]
	if !ok {
		return 0, fmt.Errorf("no price listing for chain %s", chain)
	}

	query := url.Values{}
	query.Set("ids", coinID)
	query.Set("vs_currencies", fiat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var parsed map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode price response: %w", err)
	}

	price, ok := parsed[coinID][fiat]
	if !ok {
		return 0, fmt.Errorf("no %s price for %s in response", fiat, coinID)
	}
	return price, nil
}
