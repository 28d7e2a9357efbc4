package service

import (
	"context"

	"github.com/substrate-wallet-core/internal/adapter"
	"github.com/substrate-wallet-core/internal/storage"
	"github.com/substrate-wallet-core/internal/types"
)

// BalanceService serves account balance reads through the cache
type BalanceService struct {
	adapters     map[types.ChainID]adapter.ChainAdapter
	cacheService *storage.CacheService
}

// NewBalanceService creates a new balance service
func NewBalanceService(adapters map[types.ChainID]adapter.ChainAdapter, cacheService *storage.CacheService) *BalanceService {
	return &BalanceService{
		adapters:     adapters,
		cacheService: cacheService,
	}
}

// Balance returns the current balance breakdown for an account
func (s *BalanceService) Balance(ctx context.Context, chainID types.ChainID, account string) (*types.AccountBalance, error) {
	chain, ok := s.adapters[chainID]
	if !ok {
		return nil, &types.ServiceError{
			Code:    "CHAIN_NOT_SUPPORTED",
			Message: "chain not supported: " + string(chainID),
		}
	}

	if s.cacheService != nil {
		if cached, hit := s.cacheService.GetBalance(ctx, chainID, account); hit {
			return cached, nil
		}
	}

	balance, err := chain.Balances(ctx, account)
	if err != nil {
		return nil, err
	}

	if s.cacheService != nil {
		s.cacheService.SetBalance(ctx, chainID, account, balance)
	}
	return balance, nil
}
