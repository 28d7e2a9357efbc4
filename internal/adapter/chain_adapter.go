// Package adapter provides the external collaborators of the wallet core:
// the Substrate chain client, the Subscan reward indexer, and the CoinGecko
// price feed.
package adapter

import (
	"context"
	"math/big"

	"github.com/substrate-wallet-core/internal/types"
)

// ChainAdapter is the typed capability surface over a Substrate node.
// Implementations own all storage-key and metadata lookups; nothing
// stringly-typed leaks past this interface.
type ChainAdapter interface {
	// Balances returns the named balance amounts for an account.
	// The account is a 0x-prefixed hex public key.
	Balances(ctx context.Context, account string) (*types.AccountBalance, error)

	// ProxyInfo returns the on-chain proxy list and the deposit currently
	// held for it. A nil result with a nil error means the account has no
	// proxies.
	ProxyInfo(ctx context.Context, account string) (*types.ProxyInfo, error)

	// Constants reads the proxy pallet deposit constants from metadata.
	Constants(ctx context.Context) (types.ChainConstants, error)

	// EstimateFee returns the partial fee for a SCALE-encoded extrinsic.
	EstimateFee(ctx context.Context, extrinsicHex string) (*big.Int, error)

	// Submit hands a signed extrinsic to the node and returns its hash.
	// Signing happens client-side; the service never holds keys.
	Submit(ctx context.Context, signedExtrinsicHex string) (string, error)

	// ChainID identifies the network this adapter is connected to.
	ChainID() types.ChainID
}
