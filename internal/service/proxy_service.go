package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/substrate-wallet-core/internal/adapter"
	"github.com/substrate-wallet-core/internal/storage"
	"github.com/substrate-wallet-core/internal/types"
)

// ProxySet reconciles an account's on-chain proxy relationships with pending
// UI edits. The item list is single-owner: all mutation goes through Add,
// ToggleDelete, and ClearRemovals; callers never patch it directly.
type ProxySet struct {
	account        string
	items          []types.ProxyItem
	currentDeposit *big.Int
	constants      types.ChainConstants
}

// NewProxySet seeds a reconciler from chain state. current items are the
// unmodified on-chain relationships; currentDeposit is zero when the account
// has no proxies yet.
func NewProxySet(account string, current []types.ProxyRelationship, currentDeposit *big.Int, constants types.ChainConstants) *ProxySet {
	items := make([]types.ProxyItem, 0, len(current))
	for _, rel := range current {
		items = append(items, types.ProxyItem{Proxy: rel, Status: types.ProxyStatusCurrent})
	}
	if currentDeposit == nil {
		currentDeposit = new(big.Int)
	}
	return &ProxySet{
		account:        account,
		items:          items,
		currentDeposit: currentDeposit,
		constants:      constants,
	}
}

// Add stages a new proxy relationship. Self-proxying and duplicates of any
// existing item, whatever its status, are rejected.
func (s *ProxySet) Add(rel types.ProxyRelationship) error {
	if rel.Delegate == s.account {
		return &types.ServiceError{
			Code:    "SELF_PROXY",
			Message: "an account cannot be its own proxy",
			Details: map[string]interface{}{"delegate": rel.Delegate},
		}
	}
	for _, item := range s.items {
		if item.Proxy.SameIdentity(rel) {
			return &types.ServiceError{
				Code:    "DUPLICATE_PROXY",
				Message: fmt.Sprintf("proxy %s (%s) already exists", rel.Delegate, rel.ProxyType),
				Details: map[string]interface{}{
					"delegate":  rel.Delegate,
					"proxyType": rel.ProxyType,
				},
			}
		}
	}
	s.items = append(s.items, types.ProxyItem{Proxy: rel, Status: types.ProxyStatusNew})
	return nil
}

// ToggleDelete applies the delete action to the matching item:
// new items are removed outright, current items are staged for removal, and
// items already staged for removal are restored (undo).
func (s *ProxySet) ToggleDelete(delegate string, proxyType types.ProxyType) error {
	target := types.ProxyRelationship{Delegate: delegate, ProxyType: proxyType}
	for i, item := range s.items {
		if !item.Proxy.SameIdentity(target) {
			continue
		}
		switch item.Status {
		case types.ProxyStatusNew:
			s.items = append(s.items[:i], s.items[i+1:]...)
		case types.ProxyStatusCurrent:
			s.items[i].Status = types.ProxyStatusRemove
		case types.ProxyStatusRemove:
			s.items[i].Status = types.ProxyStatusCurrent
		}
		return nil
	}
	return &types.ServiceError{
		Code:    "PROXY_NOT_FOUND",
		Message: fmt.Sprintf("no proxy item for %s (%s)", delegate, proxyType),
	}
}

// ClearRemovals restores every remove-staged item to current in one step.
// New items are untouched.
func (s *ProxySet) ClearRemovals() {
	for i := range s.items {
		if s.items[i].Status == types.ProxyStatusRemove {
			s.items[i].Status = types.ProxyStatusCurrent
		}
	}
}

// Items returns a copy of the reconciled list
func (s *ProxySet) Items() []types.ProxyItem {
	items := make([]types.ProxyItem, len(s.items))
	copy(items, s.items)
	return items
}

// counts returns the on-chain item count and the staged-add count. Items
// staged for removal still count as on-chain until submission.
func (s *ProxySet) counts() (old, toAdd int) {
	for _, item := range s.items {
		switch item.Status {
		case types.ProxyStatusNew:
			toAdd++
		case types.ProxyStatusCurrent, types.ProxyStatusRemove:
			old++
		}
	}
	return old, toAdd
}

// NewDeposit computes the deposit required after submission, assuming the
// staged additions proceed:
//
//	old > 0:   factor*(old+toAdd) + base
//	toAdd > 0: factor*toAdd + base
//	else:      0
func (s *ProxySet) NewDeposit() *big.Int {
	old, toAdd := s.counts()

	count := 0
	switch {
	case old > 0:
		count = old + toAdd
	case toAdd > 0:
		count = toAdd
	default:
		return new(big.Int)
	}

	deposit := new(big.Int).Mul(s.constants.ProxyDepositFactor, big.NewInt(int64(count)))
	return deposit.Add(deposit, s.constants.ProxyDepositBase)
}

// DepositToPay is the incremental amount the user must additionally lock:
// max(0, newDeposit - currentDeposit).
func (s *ProxySet) DepositToPay() *big.Int {
	delta := new(big.Int).Sub(s.NewDeposit(), s.currentDeposit)
	if delta.Sign() < 0 {
		return new(big.Int)
	}
	return delta
}

// AssembleCalls builds the submission payload: one remove call per
// remove-staged item, one add call per new item. Two or more calls are
// combined into a single atomic batch; exactly one stays unbatched; none
// yields nil.
func (s *ProxySet) AssembleCalls() *types.SubmissionCall {
	var calls []types.ProxyCall
	for _, item := range s.items {
		switch item.Status {
		case types.ProxyStatusRemove:
			calls = append(calls, types.ProxyCall{
				Action:    types.ProxyCallRemove,
				Delegate:  item.Proxy.Delegate,
				ProxyType: item.Proxy.ProxyType,
				Delay:     item.Proxy.Delay,
			})
		case types.ProxyStatusNew:
			calls = append(calls, types.ProxyCall{
				Action:    types.ProxyCallAdd,
				Delegate:  item.Proxy.Delegate,
				ProxyType: item.Proxy.ProxyType,
				Delay:     item.Proxy.Delay,
			})
		}
	}

	if len(calls) == 0 {
		return nil
	}
	return &types.SubmissionCall{
		Batch: len(calls) > 1,
		Calls: calls,
	}
}

// ProxyService seeds reconcilers from chain state and previews the effect of
// pending edits, including the resulting deposit delta.
type ProxyService struct {
	adapters     map[types.ChainID]adapter.ChainAdapter
	cacheService *storage.CacheService
	payability   *PayabilityService
}

// NewProxyService creates a new proxy service
func NewProxyService(adapters map[types.ChainID]adapter.ChainAdapter, cacheService *storage.CacheService, payability *PayabilityService) *ProxyService {
	return &ProxyService{
		adapters:     adapters,
		cacheService: cacheService,
		payability:   payability,
	}
}

// ProxyEdit is a single pending edit applied to a seeded proxy set
type ProxyEdit struct {
	Action    string          `json:"action"` // "add" or "delete"
	Delegate  string          `json:"delegate"`
	ProxyType types.ProxyType `json:"proxyType"`
	Delay     uint32          `json:"delay"`
}

// Edit actions accepted in a preview request
const (
	ProxyEditAdd    = "add"
	ProxyEditDelete = "delete"
)

// ProxyPreview is the result of applying edits to the current on-chain state
type ProxyPreview struct {
	Items        []types.ProxyItem     `json:"items"`
	NewDeposit   string                `json:"newDeposit"`
	DepositToPay string                `json:"depositToPay"`
	Call         *types.SubmissionCall `json:"call,omitempty"`
}

// CurrentProxies returns the reconciled view of the on-chain proxy list with
// no pending edits.
func (s *ProxyService) CurrentProxies(ctx context.Context, chainID types.ChainID, account string) ([]types.ProxyItem, error) {
	set, err := s.Seed(ctx, chainID, account)
	if err != nil {
		return nil, err
	}
	return set.Items(), nil
}

// Seed builds a reconciler for an account from the chain's proxy query and
// the cached proxy pallet constants.
func (s *ProxyService) Seed(ctx context.Context, chainID types.ChainID, account string) (*ProxySet, error) {
	chain, ok := s.adapters[chainID]
	if !ok {
		return nil, &types.ServiceError{
			Code:    "CHAIN_NOT_SUPPORTED",
			Message: fmt.Sprintf("chain not supported: %s", chainID),
		}
	}

	constants, err := s.constants(ctx, chain, chainID)
	if err != nil {
		return nil, err
	}

	info, err := chain.ProxyInfo(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to query proxies for %s: %w", account, err)
	}
	if info == nil {
		// Resolved-empty: the account has no proxies yet.
		info = &types.ProxyInfo{Deposit: new(big.Int)}
	}

	return NewProxySet(account, info.Proxies, info.Deposit, constants), nil
}

// Preview applies edits to a freshly seeded set and reports the resulting
// list, deposit delta, and assembled call.
func (s *ProxyService) Preview(ctx context.Context, chainID types.ChainID, account string, edits []ProxyEdit) (*ProxyPreview, error) {
	set, err := s.Seed(ctx, chainID, account)
	if err != nil {
		return nil, err
	}

	for _, edit := range edits {
		switch edit.Action {
		case ProxyEditAdd:
			err = set.Add(types.ProxyRelationship{
				Delegate:  edit.Delegate,
				ProxyType: edit.ProxyType,
				Delay:     edit.Delay,
			})
		case ProxyEditDelete:
			err = set.ToggleDelete(edit.Delegate, edit.ProxyType)
		default:
			err = &types.ServiceError{
				Code:    "INVALID_PROXY_EDIT",
				Message: fmt.Sprintf("unknown proxy edit action: %s", edit.Action),
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return &ProxyPreview{
		Items:        set.Items(),
		NewDeposit:   set.NewDeposit().String(),
		DepositToPay: set.DepositToPay().String(),
		Call:         set.AssembleCalls(),
	}, nil
}

// constants reads the proxy pallet constants through the cache
func (s *ProxyService) constants(ctx context.Context, chain adapter.ChainAdapter, chainID types.ChainID) (types.ChainConstants, error) {
	if s.cacheService != nil {
		if cached, ok := s.cacheService.GetConstants(ctx, chainID); ok {
			return cached, nil
		}
	}

	constants, err := chain.Constants(ctx)
	if err != nil {
		return types.ChainConstants{}, fmt.Errorf("failed to read chain constants: %w", err)
	}

	if s.cacheService != nil {
		s.cacheService.SetConstants(ctx, chainID, constants)
	}
	return constants, nil
}
