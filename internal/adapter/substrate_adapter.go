package adapter

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	stypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"

	"github.com/substrate-wallet-core/internal/retry"
	"github.com/substrate-wallet-core/internal/types"
)

// SubstrateAdapter implements ChainAdapter over a Substrate node's RPC
// endpoint using go-substrate-rpc-client.
type SubstrateAdapter struct {
	chainID types.ChainID
	api     *gsrpc.SubstrateAPI
	meta    *stypes.Metadata
}

// proxyTypeByIndex maps the runtime's ProxyType enum indices to their names.
// The order matches the relay-chain runtimes.
var proxyTypeByIndex = []types.ProxyType{
	types.ProxyTypeAny,
	types.ProxyTypeNonTransfer,
	types.ProxyTypeGovernance,
	types.ProxyTypeStaking,
	types.ProxyTypeIdentityJudge,
	types.ProxyTypeCancelProxy,
	types.ProxyTypeAuction,
	types.ProxyTypeNominationPool,
}

// accountInfo mirrors the System.Account storage layout of current runtimes
type accountInfo struct {
	Nonce       stypes.U32
	Consumers   stypes.U32
	Providers   stypes.U32
	Sufficients stypes.U32
	Data        struct {
		Free     stypes.U128
		Reserved stypes.U128
		Frozen   stypes.U128
		Flags    stypes.U128
	}
}

// proxyDefinition mirrors the pallet_proxy ProxyDefinition storage layout
type proxyDefinition struct {
	Delegate  stypes.AccountID
	ProxyType stypes.U8
	Delay     stypes.U32
}

// proxyStorage is the (Vec<ProxyDefinition>, Balance) tuple held per account
type proxyStorage struct {
	Definitions []proxyDefinition
	Deposit     stypes.U128
}

// NewSubstrateAdapter connects to a node and loads its metadata. The
// metadata fetch is retried with backoff since fresh nodes can briefly
// refuse RPC while syncing.
func NewSubstrateAdapter(ctx context.Context, chainID types.ChainID, url string) (*SubstrateAdapter, error) {
	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s node at %s: %w", chainID, url, err)
	}

	var meta *stypes.Metadata
	err = retry.WithRetry(ctx, func(ctx context.Context, attempt int) error {
		m, err := api.RPC.State.GetMetadataLatest()
		if err != nil {
			return err
		}
		meta = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", chainID, err)
	}

	return &SubstrateAdapter{
		chainID: chainID,
		api:     api,
		meta:    meta,
	}, nil
}

// ChainID identifies the connected network
func (a *SubstrateAdapter) ChainID() types.ChainID {
	return a.chainID
}

// Balances reads System.Account for a hex public key
func (a *SubstrateAdapter) Balances(ctx context.Context, account string) (*types.AccountBalance, error) {
	pub, err := decodeAccount(account)
	if err != nil {
		return nil, err
	}

	key, err := stypes.CreateStorageKey(a.meta, "System", "Account", pub)
	if err != nil {
		return nil, fmt.Errorf("failed to build account storage key: %w", err)
	}

	var info accountInfo
	ok, err := a.api.RPC.State.GetStorageLatest(key, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to query account storage: %w", err)
	}
	if !ok {
		// Account not on chain yet: every balance is zero.
		return &types.AccountBalance{
			Free:     new(big.Int),
			Reserved: new(big.Int),
			Frozen:   new(big.Int),
		}, nil
	}

	return &types.AccountBalance{
		Free:     info.Data.Free.Int,
		Reserved: info.Data.Reserved.Int,
		Frozen:   info.Data.Frozen.Int,
	}, nil
}

// ProxyInfo reads Proxy.Proxies for a hex public key
func (a *SubstrateAdapter) ProxyInfo(ctx context.Context, account string) (*types.ProxyInfo, error) {
	pub, err := decodeAccount(account)
	if err != nil {
		return nil, err
	}

	key, err := stypes.CreateStorageKey(a.meta, "Proxy", "Proxies", pub)
	if err != nil {
		return nil, fmt.Errorf("failed to build proxy storage key: %w", err)
	}

	var stored proxyStorage
	ok, err := a.api.RPC.State.GetStorageLatest(key, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to query proxy storage: %w", err)
	}
	if !ok || len(stored.Definitions) == 0 {
		return nil, nil
	}

	proxies := make([]types.ProxyRelationship, 0, len(stored.Definitions))
	for _, def := range stored.Definitions {
		proxyType, err := decodeProxyType(uint8(def.ProxyType))
		if err != nil {
			return nil, fmt.Errorf("failed to decode proxy for %s: %w", account, err)
		}
		proxies = append(proxies, types.ProxyRelationship{
			Delegate:  codec.HexEncodeToString(def.Delegate[:]),
			ProxyType: proxyType,
			Delay:     uint32(def.Delay),
		})
	}
	return &types.ProxyInfo{
		Proxies: proxies,
		Deposit: stored.Deposit.Int,
	}, nil
}

// Constants reads the proxy pallet deposit constants from metadata
func (a *SubstrateAdapter) Constants(ctx context.Context) (types.ChainConstants, error) {
	base, err := a.constantU128("Proxy", "ProxyDepositBase")
	if err != nil {
		return types.ChainConstants{}, err
	}
	factor, err := a.constantU128("Proxy", "ProxyDepositFactor")
	if err != nil {
		return types.ChainConstants{}, err
	}
	return types.ChainConstants{
		ProxyDepositBase:   base,
		ProxyDepositFactor: factor,
	}, nil
}

// constantU128 decodes a pallet constant as a U128 amount
func (a *SubstrateAdapter) constantU128(pallet, name string) (*big.Int, error) {
	data, err := a.meta.FindConstantValue(pallet, name)
	if err != nil {
		return nil, fmt.Errorf("constant %s.%s not found in metadata: %w", pallet, name, err)
	}
	var value stypes.U128
	if err := codec.Decode(data, &value); err != nil {
		return nil, fmt.Errorf("failed to decode constant %s.%s: %w", pallet, name, err)
	}
	return value.Int, nil
}

// feeInfo is the payment_queryInfo response shape
type feeInfo struct {
	PartialFee string `json:"partialFee"`
}

// EstimateFee asks the node for the partial fee of a SCALE-encoded extrinsic
func (a *SubstrateAdapter) EstimateFee(ctx context.Context, extrinsicHex string) (*big.Int, error) {
	if !strings.HasPrefix(extrinsicHex, "0x") {
		return nil, &types.ServiceError{
			Code:    "INVALID_EXTRINSIC",
			Message: "extrinsic must be a 0x-prefixed hex string",
		}
	}

	var info feeInfo
	if err := a.api.Client.Call(&info, "payment_queryInfo", extrinsicHex); err != nil {
		return nil, fmt.Errorf("payment_queryInfo failed: %w", err)
	}

	fee, err := parseAmount(info.PartialFee)
	if err != nil {
		return nil, fmt.Errorf("failed to parse partial fee %q: %w", info.PartialFee, err)
	}
	return fee, nil
}

// Submit forwards a signed extrinsic to the node
func (a *SubstrateAdapter) Submit(ctx context.Context, signedExtrinsicHex string) (string, error) {
	var hash string
	if err := a.api.Client.Call(&hash, "author_submitExtrinsic", signedExtrinsicHex); err != nil {
		return "", fmt.Errorf("author_submitExtrinsic failed: %w", err)
	}
	return hash, nil
}

// decodeAccount parses a 0x-prefixed hex public key
func decodeAccount(account string) ([]byte, error) {
	pub, err := codec.HexDecodeString(account)
	if err != nil || len(pub) != 32 {
		return nil, &types.ServiceError{
			Code:    "INVALID_ADDRESS",
			Message: fmt.Sprintf("invalid account public key: %s", account),
			Details: map[string]interface{}{"account": account},
		}
	}
	return pub, nil
}

// decodeProxyType maps a runtime enum index. An unknown index is an error:
// after a runtime upgrade a new variant must not be mislabeled as an existing
// one.
func decodeProxyType(index uint8) (types.ProxyType, error) {
	if int(index) < len(proxyTypeByIndex) {
		return proxyTypeByIndex[index], nil
	}
	return "", fmt.Errorf("unknown proxy type index %d", index)
}

// parseAmount parses a decimal or 0x-hex amount string
func parseAmount(s string) (*big.Int, error) {
	value := new(big.Int)
	if strings.HasPrefix(s, "0x") {
		if _, ok := value.SetString(s[2:], 16); !ok {
			return nil, fmt.Errorf("not a hex amount")
		}
		return value, nil
	}
	if _, ok := value.SetString(s, 10); !ok {
		return nil, fmt.Errorf("not a decimal amount")
	}
	return value, nil
}
