package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquiditySupply/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS liquidity_transactions (
	hash       TEXT PRIMARY KEY,
	chain_id   BIGINT NOT NULL,
	sender     TEXT NOT NULL,
	summary    TEXT NOT NULL,
	status     TEXT NOT NULL,
	added_at   TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store provides Postgres persistence for transaction history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the history table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create liquidity_transactions: %w", err)
	}
	return nil
}

// Record inserts a transaction; a repeated hash is ignored.
func (s *Store) Record(ctx context.Context, tx model.PendingTransaction) error {
	if tx.Hash == "" {
		return fmt.Errorf("transaction hash is required")
	}
	status := tx.Status
	if status == "" {
		status = model.TxSubmitted
	}
	addedAt := time.Now().UTC()
	if tx.AddedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, tx.AddedAt)
		if err != nil {
			return fmt.Errorf("parse added_at: %w", err)
		}
		addedAt = parsed
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO liquidity_transactions (hash, chain_id, sender, summary, status, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (hash) DO NOTHING
	`, tx.Hash, int64(tx.ChainID), tx.From, tx.Summary, string(status), addedAt)
	return err
}

// UpdateStatus sets the status of a recorded transaction.
func (s *Store) UpdateStatus(ctx context.Context, hash string, status model.TxStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE liquidity_transactions SET status = $2, updated_at = now() WHERE hash = $1
	`, hash, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", hash)
	}
	return nil
}

// List returns the history ordered by submission time.
func (s *Store) List(ctx context.Context) ([]model.PendingTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT hash, chain_id, sender, summary, status, added_at, updated_at
		FROM liquidity_transactions ORDER BY added_at, hash
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PendingTransaction, error) {
		var (
			tx        model.PendingTransaction
			chainID   int64
			status    string
			addedAt   time.Time
			updatedAt time.Time
		)
		if err := row.Scan(&tx.Hash, &chainID, &tx.From, &tx.Summary, &status, &addedAt, &updatedAt); err != nil {
			return model.PendingTransaction{}, err
		}
		tx.ChainID = uint64(chainID)
		tx.Status = model.TxStatus(status)
		tx.AddedAt = addedAt.UTC().Format(time.RFC3339Nano)
		tx.UpdatedAt = updatedAt.UTC().Format(time.RFC3339Nano)
		return tx, nil
	})
}

// Get returns one transaction by hash.
func (s *Store) Get(ctx context.Context, hash string) (model.PendingTransaction, bool, error) {
	var (
		tx      model.PendingTransaction
		chainID int64
		status  string
		addedAt time.Time
	)
	row := s.pool.QueryRow(ctx, `
		SELECT hash, chain_id, sender, summary, status, added_at FROM liquidity_transactions WHERE hash = $1
	`, hash)
	if err := row.Scan(&tx.Hash, &chainID, &tx.From, &tx.Summary, &status, &addedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PendingTransaction{}, false, nil
		}
		return model.PendingTransaction{}, false, err
	}
	tx.ChainID = uint64(chainID)
	tx.Status = model.TxStatus(status)
	tx.AddedAt = addedAt.UTC().Format(time.RFC3339Nano)
	return tx, true, nil
}
