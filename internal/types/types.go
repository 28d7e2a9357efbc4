// Package types provides common type definitions for the wallet core service.
package types

import "math/big"

// ChainID represents supported Substrate networks
type ChainID string

const (
	// ChainPolkadot represents the Polkadot relay chain
	ChainPolkadot ChainID = "polkadot"
	// ChainKusama represents the Kusama relay chain
	ChainKusama ChainID = "kusama"
	// ChainWestend represents the Westend test network
	ChainWestend ChainID = "westend"
)

// CanPayStatement is the single diagnostic produced by a payability resolution
type CanPayStatement string

const (
	// StatementCanPay means fee and deposit are both covered
	StatementCanPay CanPayStatement = "CAN_PAY"
	// StatementCanNotPay means neither fee nor deposit is covered
	StatementCanNotPay CanPayStatement = "CAN_NOT_PAY"
	// StatementCanNotPayFee means the deposit is covered but the fee is not
	StatementCanNotPayFee CanPayStatement = "CAN_NOT_PAY_FEE"
	// StatementCanNotPayDeposit means the fee is covered but the deposit is not
	StatementCanNotPayDeposit CanPayStatement = "CAN_NOT_PAY_DEPOSIT"
	// StatementProxyCanPayFee means the selected proxy cannot cover the fee
	StatementProxyCanPayFee CanPayStatement = "PROXY_CAN_PAY_FEE"
)

// PaymentCapability holds the individual affordability checks behind a
// resolution. Computed fresh per check, never persisted.
type PaymentCapability struct {
	CanPayFee         bool `json:"canPayFee"`
	CanPayDeposit     bool `json:"canPayDeposit"`
	CanPayWholeAmount bool `json:"canPayWholeAmount"`
	HasDeposit        bool `json:"hasDeposit"`
	UseProxy          bool `json:"useProxy"`
}

// PaymentResolution is the outcome of a payability resolution.
// IsAbleToPay is nil while required inputs have not resolved yet; nil is
// distinct from false.
type PaymentResolution struct {
	IsAbleToPay *bool             `json:"isAbleToPay"`
	Statement   CanPayStatement   `json:"statement,omitempty"`
	Warning     string            `json:"warning,omitempty"`
	Capability  PaymentCapability `json:"capability"`
}

// AccountBalance holds the named balance amounts for an account on a chain.
// All amounts are in the chain's smallest native unit.
type AccountBalance struct {
	Free     *big.Int
	Reserved *big.Int
	Frozen   *big.Int
}

// Transferable derives the spendable amount: free - max(0, frozen - reserved).
func (b *AccountBalance) Transferable() *big.Int {
	if b == nil || b.Free == nil {
		return nil
	}
	locked := new(big.Int)
	if b.Frozen != nil {
		locked.Set(b.Frozen)
	}
	if b.Reserved != nil {
		locked.Sub(locked, b.Reserved)
	}
	if locked.Sign() < 0 {
		locked.SetInt64(0)
	}
	return new(big.Int).Sub(b.Free, locked)
}

// RewardEvent is a single staking payout fetched from the indexer.
// Immutable once fetched.
type RewardEvent struct {
	Address   string   `json:"address"`
	Amount    *big.Int `json:"-"`
	AmountRaw string   `json:"amount"`
	Era       int      `json:"era"`
	Timestamp int64    `json:"timestamp"`
	PoolID    *int     `json:"poolId,omitempty"`
}

// DayBucket is the per-calendar-date aggregate of reward events.
// Gap dates are synthesized with a zero amount.
type DayBucket struct {
	Date          string   `json:"date"`
	Timestamp     int64    `json:"timestamp"`
	Amount        *big.Int `json:"-"`
	AmountRaw     string   `json:"amount"`
	AmountInHuman string   `json:"amountInHuman"`
}

// FetchStatus describes the terminal state of a reward fetch
type FetchStatus string

const (
	// StatusLoading means the fetch has not resolved yet
	StatusLoading FetchStatus = "loading"
	// StatusError means the fetch failed or resolved with no data
	StatusError FetchStatus = "error"
	// StatusReady means events are present, possibly empty after filtering
	StatusReady FetchStatus = "ready"
)

// ProxyType enumerates the on-chain proxy kinds
type ProxyType string

const (
	ProxyTypeAny            ProxyType = "Any"
	ProxyTypeNonTransfer    ProxyType = "NonTransfer"
	ProxyTypeGovernance     ProxyType = "Governance"
	ProxyTypeStaking        ProxyType = "Staking"
	ProxyTypeIdentityJudge  ProxyType = "IdentityJudgement"
	ProxyTypeCancelProxy    ProxyType = "CancelProxy"
	ProxyTypeAuction        ProxyType = "Auction"
	ProxyTypeNominationPool ProxyType = "NominationPools"
)

// ProxyRelationship is an on-chain proxy delegation
type ProxyRelationship struct {
	Delegate  string    `json:"delegate"`
	ProxyType ProxyType `json:"proxyType"`
	Delay     uint32    `json:"delay"`
}

// SameIdentity reports whether two relationships are the same delegation.
// Identity is (delegate, proxyType); delay is not part of it.
func (p ProxyRelationship) SameIdentity(other ProxyRelationship) bool {
	return p.Delegate == other.Delegate && p.ProxyType == other.ProxyType
}

// ProxyItemStatus tracks the staged state of a proxy relationship
type ProxyItemStatus string

const (
	// ProxyStatusCurrent is unmodified on-chain state
	ProxyStatusCurrent ProxyItemStatus = "current"
	// ProxyStatusNew is staged for addition, no on-chain counterpart yet
	ProxyStatusNew ProxyItemStatus = "new"
	// ProxyStatusRemove marks an existing relationship staged for deletion
	ProxyStatusRemove ProxyItemStatus = "remove"
)

// ProxyItem pairs a relationship with its staged status
type ProxyItem struct {
	Proxy  ProxyRelationship `json:"proxy"`
	Status ProxyItemStatus   `json:"status"`
}

// ProxyCallAction distinguishes the two proxy call kinds
type ProxyCallAction string

const (
	// ProxyCallAdd adds a proxy relationship on chain
	ProxyCallAdd ProxyCallAction = "addProxy"
	// ProxyCallRemove removes a proxy relationship on chain
	ProxyCallRemove ProxyCallAction = "removeProxy"
)

// ProxyCall is a single add/remove proxy call to be submitted
type ProxyCall struct {
	Action    ProxyCallAction `json:"action"`
	Delegate  string          `json:"delegate"`
	ProxyType ProxyType       `json:"proxyType"`
	Delay     uint32          `json:"delay"`
}

// SubmissionCall is what the transaction submission collaborator accepts:
// either a single call or an atomic batch of calls.
type SubmissionCall struct {
	Batch bool        `json:"batch"`
	Calls []ProxyCall `json:"calls"`
}

// ChainConstants holds the proxy pallet constants needed for deposit math
type ChainConstants struct {
	ProxyDepositBase   *big.Int
	ProxyDepositFactor *big.Int
}

// ProxyInfo is the chain query result for an account's proxy state
type ProxyInfo struct {
	Proxies []ProxyRelationship
	Deposit *big.Int
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
