// Package service implements the wallet core business rules: payability
// resolution, reward period aggregation, and proxy set reconciliation.
package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/substrate-wallet-core/internal/adapter"
	"github.com/substrate-wallet-core/internal/storage"
	"github.com/substrate-wallet-core/internal/types"
)

// PayabilityInput holds the already-resolved amounts a payability resolution
// is computed from. A nil EstimatedFee or a nil gating balance marks the
// input set as not ready.
type PayabilityInput struct {
	Available      *big.Int // transferable balance of the primary account
	EstimatedFee   *big.Int // required; resolution is inert without it
	DepositAmount  *big.Int // optional, treated as zero when nil
	ProxyAvailable *big.Int // transferable balance of the proxy payer
	UseProxy       bool     // true iff a proxy account was supplied
}

// Statement warnings surfaced to the caller as short line-item texts
const (
	warningCanNotPayFee     = "Insufficient balance to cover transaction fee."
	warningCanNotPayDeposit = "Insufficient balance to cover the required deposit."
	warningCanNotPay        = "Insufficient balance to cover the transaction fee and deposit."
	warningProxyCanNotPay   = "The selected proxy account has insufficient balance to cover the transaction fee."
)

// ResolvePayability decides whether the payer(s) can cover the estimated fee
// and optional deposit, and produces exactly one diagnostic statement.
//
// Fee comparisons are strict (the fee must leave a positive remainder);
// deposit comparisons are non-strict (an exact deposit amount is payable).
// The asymmetry is intentional and must not be normalized.
//
// The function is pure: same inputs always yield the same resolution.
func ResolvePayability(in PayabilityInput) types.PaymentResolution {
	if in.EstimatedFee == nil {
		return types.PaymentResolution{}
	}
	if in.UseProxy && in.ProxyAvailable == nil {
		return types.PaymentResolution{}
	}
	if !in.UseProxy && in.Available == nil {
		return types.PaymentResolution{}
	}

	deposit := in.DepositAmount
	if deposit == nil {
		deposit = new(big.Int)
	}
	hasDeposit := deposit.Sign() > 0

	// The proxy branch only consults the primary balance for the deposit.
	if in.UseProxy && hasDeposit && in.Available == nil {
		return types.PaymentResolution{}
	}

	cap := types.PaymentCapability{
		HasDeposit: hasDeposit,
		UseProxy:   in.UseProxy,
	}

	var statement types.CanPayStatement
	if in.UseProxy {
		cap.CanPayFee = in.ProxyAvailable.Cmp(in.EstimatedFee) > 0
		if !hasDeposit {
			if cap.CanPayFee {
				statement = types.StatementCanPay
			} else {
				statement = types.StatementProxyCanPayFee
			}
		} else {
			cap.CanPayDeposit = in.Available.Cmp(deposit) >= 0
			switch {
			case cap.CanPayFee && cap.CanPayDeposit:
				statement = types.StatementCanPay
			case cap.CanPayFee && !cap.CanPayDeposit:
				statement = types.StatementCanNotPayDeposit
			case !cap.CanPayFee && cap.CanPayDeposit:
				statement = types.StatementProxyCanPayFee
			default:
				statement = types.StatementCanNotPay
			}
		}
	} else {
		whole := new(big.Int).Add(in.EstimatedFee, deposit)
		cap.CanPayFee = in.Available.Cmp(in.EstimatedFee) > 0
		cap.CanPayDeposit = in.Available.Cmp(deposit) >= 0
		cap.CanPayWholeAmount = in.Available.Cmp(whole) > 0
		if !hasDeposit {
			if cap.CanPayFee {
				statement = types.StatementCanPay
			} else {
				statement = types.StatementCanNotPayFee
			}
		} else {
			switch {
			case cap.CanPayWholeAmount:
				statement = types.StatementCanPay
			case cap.CanPayDeposit && !cap.CanPayFee:
				statement = types.StatementCanNotPayFee
			case !cap.CanPayDeposit && cap.CanPayFee:
				statement = types.StatementCanNotPayDeposit
			default:
				statement = types.StatementCanNotPay
			}
		}
	}

	able := statement == types.StatementCanPay
	return types.PaymentResolution{
		IsAbleToPay: &able,
		Statement:   statement,
		Warning:     statementWarning(statement),
		Capability:  cap,
	}
}

// statementWarning maps a shortfall statement to its line-item warning text
func statementWarning(s types.CanPayStatement) string {
	switch s {
	case types.StatementCanNotPayFee:
		return warningCanNotPayFee
	case types.StatementCanNotPayDeposit:
		return warningCanNotPayDeposit
	case types.StatementCanNotPay:
		return warningCanNotPay
	case types.StatementProxyCanPayFee:
		return warningProxyCanNotPay
	default:
		return ""
	}
}

// PayabilityService resolves payability for prospective transactions using
// externally fetched balances and fee estimates.
type PayabilityService struct {
	adapters     map[types.ChainID]adapter.ChainAdapter
	cacheService *storage.CacheService
}

// NewPayabilityService creates a new payability service
func NewPayabilityService(adapters map[types.ChainID]adapter.ChainAdapter, cacheService *storage.CacheService) *PayabilityService {
	return &PayabilityService{
		adapters:     adapters,
		cacheService: cacheService,
	}
}

// CheckPayabilityInput describes a prospective payment to check
type CheckPayabilityInput struct {
	Chain         types.ChainID
	Account       string
	ProxyAccount  string   // optional; non-empty means the proxy pays the fee
	CallHex       string   // SCALE-encoded extrinsic, used for fee estimation
	EstimatedFee  *big.Int // optional pre-estimated fee, overrides CallHex
	DepositAmount *big.Int // optional deposit to be locked
}

// CheckPayability loads the relevant transferable balances, estimates the fee
// if needed, and resolves the payment statement.
func (s *PayabilityService) CheckPayability(ctx context.Context, in *CheckPayabilityInput) (*types.PaymentResolution, error) {
	chain, ok := s.adapters[in.Chain]
	if !ok {
		return nil, &types.ServiceError{
			Code:    "CHAIN_NOT_SUPPORTED",
			Message: fmt.Sprintf("chain not supported: %s", in.Chain),
		}
	}

	fee := in.EstimatedFee
	if fee == nil && in.CallHex != "" {
		estimated, err := chain.EstimateFee(ctx, in.CallHex)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate fee: %w", err)
		}
		fee = estimated
	}

	available, err := s.transferable(ctx, chain, in.Chain, in.Account)
	if err != nil {
		return nil, err
	}

	useProxy := in.ProxyAccount != ""
	var proxyAvailable *big.Int
	if useProxy {
		proxyAvailable, err = s.transferable(ctx, chain, in.Chain, in.ProxyAccount)
		if err != nil {
			return nil, err
		}
	}

	resolution := ResolvePayability(PayabilityInput{
		Available:      available,
		EstimatedFee:   fee,
		DepositAmount:  in.DepositAmount,
		ProxyAvailable: proxyAvailable,
		UseProxy:       useProxy,
	})
	return &resolution, nil
}

// transferable loads an account's balance through the cache and derives the
// spendable amount.
func (s *PayabilityService) transferable(ctx context.Context, chain adapter.ChainAdapter, chainID types.ChainID, account string) (*big.Int, error) {
	if s.cacheService != nil {
		if cached, ok := s.cacheService.GetBalance(ctx, chainID, account); ok {
			return cached.Transferable(), nil
		}
	}

	balance, err := chain.Balances(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance for %s: %w", account, err)
	}

	if s.cacheService != nil {
		s.cacheService.SetBalance(ctx, chainID, account, balance)
	}
	return balance.Transferable(), nil
}
