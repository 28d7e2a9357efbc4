package storage

import (
	"context"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/substrate-wallet-core/internal/types"
)

// RewardRepository persists staking reward events in Postgres. Events are
// keyed by (chain, address, era, pool_id) so repeated indexer fetches are
// idempotent.
type RewardRepository struct {
	db *PostgresDB
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *PostgresDB) *RewardRepository {
	return &RewardRepository{db: db}
}

const upsertRewardSQL = `
	INSERT INTO reward_events (chain, address, era, pool_id, amount, event_timestamp)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (chain, address, era, pool_id)
	DO UPDATE SET amount = EXCLUDED.amount, event_timestamp = EXCLUDED.event_timestamp
`

// UpsertEvents inserts or updates a batch of reward events
func (r *RewardRepository) UpsertEvents(ctx context.Context, chain types.ChainID, events []types.RewardEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, ev := range events {
		amount := "0"
		if ev.Amount != nil {
			amount = ev.Amount.String()
		}
		// pool_id -1 marks solo staking rewards, keeping the conflict
		// target non-null.
		poolID := -1
		if ev.PoolID != nil {
			poolID = *ev.PoolID
		}
		batch.Queue(upsertRewardSQL, string(chain), ev.Address, ev.Era, poolID, amount, ev.Timestamp)
	}

	results := r.db.Pool().SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert reward events: %w", err)
		}
	}
	return nil
}

// GetByAccount returns all stored reward events for an account on a chain
func (r *RewardRepository) GetByAccount(ctx context.Context, chain types.ChainID, account string) ([]types.RewardEvent, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT address, era, pool_id, amount, event_timestamp
		FROM reward_events
		WHERE chain = $1 AND address = $2
		ORDER BY event_timestamp ASC
	`, string(chain), account)
	if err != nil {
		return nil, fmt.Errorf("failed to query reward events: %w", err)
	}
	defer rows.Close()

	var events []types.RewardEvent
	for rows.Next() {
		var (
			ev     types.RewardEvent
			poolID int
			amount string
		)
		if err := rows.Scan(&ev.Address, &ev.Era, &poolID, &amount, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reward event: %w", err)
		}
		if poolID >= 0 {
			id := poolID
			ev.PoolID = &id
		}
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, fmt.Errorf("corrupt reward amount %q for %s era %d", amount, ev.Address, ev.Era)
		}
		ev.Amount = value
		ev.AmountRaw = amount
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reward events: %w", err)
	}
	return events, nil
}

// DeleteByAccount removes the stored history for an account, used when an
// account is removed from the watch list
func (r *RewardRepository) DeleteByAccount(ctx context.Context, chain types.ChainID, account string) error {
	_, err := r.db.Pool().Exec(ctx, `
		DELETE FROM reward_events WHERE chain = $1 AND address = $2
	`, string(chain), account)
	if err != nil {
		return fmt.Errorf("failed to delete reward events: %w", err)
	}
	return nil
}
