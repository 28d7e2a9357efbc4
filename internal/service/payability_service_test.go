package service

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/substrate-wallet-core/internal/types"
)

func amount(v int64) *big.Int {
	return big.NewInt(v)
}

func TestResolvePayability_PendingInputs(t *testing.T) {
	tests := []struct {
		name string
		in   PayabilityInput
	}{
		{
			name: "nil fee",
			in:   PayabilityInput{Available: amount(100)},
		},
		{
			name: "direct with nil available",
			in:   PayabilityInput{EstimatedFee: amount(10)},
		},
		{
			name: "proxy with nil proxy balance",
			in:   PayabilityInput{EstimatedFee: amount(10), Available: amount(100), UseProxy: true},
		},
		{
			name: "proxy deposit with nil primary balance",
			in: PayabilityInput{
				EstimatedFee:   amount(10),
				DepositAmount:  amount(5),
				ProxyAvailable: amount(100),
				UseProxy:       true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePayability(tt.in)
			if got.IsAbleToPay != nil {
				t.Errorf("IsAbleToPay = %v, want nil for pending inputs", *got.IsAbleToPay)
			}
			if got.Statement != "" {
				t.Errorf("Statement = %q, want empty for pending inputs", got.Statement)
			}
		})
	}
}

func TestResolvePayability_DirectNoDeposit(t *testing.T) {
	tests := []struct {
		name      string
		available int64
		fee       int64
		statement types.CanPayStatement
	}{
		{"balance above fee", 11, 10, types.StatementCanPay},
		{"balance equal to fee fails strict check", 10, 10, types.StatementCanNotPayFee},
		{"balance below fee", 9, 10, types.StatementCanNotPayFee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePayability(PayabilityInput{
				Available:    amount(tt.available),
				EstimatedFee: amount(tt.fee),
			})
			if got.Statement != tt.statement {
				t.Errorf("Statement = %q, want %q", got.Statement, tt.statement)
			}
			wantAble := tt.statement == types.StatementCanPay
			if got.IsAbleToPay == nil || *got.IsAbleToPay != wantAble {
				t.Errorf("IsAbleToPay = %v, want %v", got.IsAbleToPay, wantAble)
			}
		})
	}
}

func TestResolvePayability_DirectWithDeposit(t *testing.T) {
	tests := []struct {
		name      string
		available int64
		fee       int64
		deposit   int64
		statement types.CanPayStatement
		warning   string
	}{
		{"covers whole with remainder", 16, 10, 5, types.StatementCanPay, ""},
		{"exact whole amount fails strict check", 15, 10, 5, types.StatementCanNotPay, warningCanNotPay},
		{"exact deposit but not fee", 5, 10, 5, types.StatementCanNotPayFee, warningCanNotPayFee},
		{"fee ok but deposit short", 12, 1, 13, types.StatementCanNotPayDeposit, warningCanNotPayDeposit},
		{"covers neither", 1, 10, 5, types.StatementCanNotPay, warningCanNotPay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePayability(PayabilityInput{
				Available:     amount(tt.available),
				EstimatedFee:  amount(tt.fee),
				DepositAmount: amount(tt.deposit),
			})
			if got.Statement != tt.statement {
				t.Errorf("Statement = %q, want %q", got.Statement, tt.statement)
			}
			if got.Warning != tt.warning {
				t.Errorf("Warning = %q, want %q", got.Warning, tt.warning)
			}
		})
	}
}

func TestResolvePayability_ProxyBranch(t *testing.T) {
	tests := []struct {
		name      string
		available int64
		proxy     int64
		fee       int64
		deposit   int64
		statement types.CanPayStatement
	}{
		{"proxy covers fee, no deposit", 0, 11, 10, 0, types.StatementCanPay},
		{"proxy exact fee fails strict check", 0, 10, 10, 0, types.StatementProxyCanPayFee},
		{"proxy covers fee, owner covers exact deposit", 5, 11, 10, 5, types.StatementCanPay},
		{"proxy covers fee, owner deposit short", 4, 11, 10, 5, types.StatementCanNotPayDeposit},
		{"proxy fee short, owner deposit ok", 5, 10, 10, 5, types.StatementProxyCanPayFee},
		{"both short", 4, 10, 10, 5, types.StatementCanNotPay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePayability(PayabilityInput{
				Available:      amount(tt.available),
				EstimatedFee:   amount(tt.fee),
				DepositAmount:  amount(tt.deposit),
				ProxyAvailable: amount(tt.proxy),
				UseProxy:       true,
			})
			if got.Statement != tt.statement {
				t.Errorf("Statement = %q, want %q", got.Statement, tt.statement)
			}
		})
	}
}

func TestResolvePayability_ProxyIgnoresOwnerFeeBalance(t *testing.T) {
	// With a proxy paying, a rich owner cannot rescue a poor proxy.
	got := ResolvePayability(PayabilityInput{
		Available:      amount(1_000_000),
		EstimatedFee:   amount(10),
		ProxyAvailable: amount(1),
		UseProxy:       true,
	})
	if got.Statement != types.StatementProxyCanPayFee {
		t.Errorf("Statement = %q, want %q", got.Statement, types.StatementProxyCanPayFee)
	}
}

func TestResolvePayability_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	positive := gen.Int64Range(1, 1_000_000)
	nonNegative := gen.Int64Range(0, 1_000_000)

	// More balance can never turn a payable statement unpayable.
	properties.Property("payability is monotone in available balance", prop.ForAll(
		func(available, extra, fee, deposit int64) bool {
			base := ResolvePayability(PayabilityInput{
				Available:     amount(available),
				EstimatedFee:  amount(fee),
				DepositAmount: amount(deposit),
			})
			richer := ResolvePayability(PayabilityInput{
				Available:     amount(available + extra),
				EstimatedFee:  amount(fee),
				DepositAmount: amount(deposit),
			})
			if base.IsAbleToPay == nil || richer.IsAbleToPay == nil {
				return false
			}
			return !*base.IsAbleToPay || *richer.IsAbleToPay
		},
		nonNegative, nonNegative, positive, nonNegative,
	))

	properties.Property("resolution is deterministic", prop.ForAll(
		func(available, fee, deposit int64) bool {
			in := PayabilityInput{
				Available:     amount(available),
				EstimatedFee:  amount(fee),
				DepositAmount: amount(deposit),
			}
			a := ResolvePayability(in)
			b := ResolvePayability(in)
			return a.Statement == b.Statement && *a.IsAbleToPay == *b.IsAbleToPay
		},
		nonNegative, positive, nonNegative,
	))

	// Exactly one diagnostic statement, and the warning matches it.
	properties.Property("shortfall statements carry a warning", prop.ForAll(
		func(available, fee, deposit int64) bool {
			got := ResolvePayability(PayabilityInput{
				Available:     amount(available),
				EstimatedFee:  amount(fee),
				DepositAmount: amount(deposit),
			})
			if got.Statement == types.StatementCanPay {
				return got.Warning == ""
			}
			return got.Warning != ""
		},
		nonNegative, positive, nonNegative,
	))

	properties.TestingRun(t)
}
