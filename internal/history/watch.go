package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"liquiditySupply/internal/model"
	"liquiditySupply/internal/storage"
)

// ReceiptReader fetches a transaction receipt, returning ethereum.NotFound until mined.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// WatchConfig bounds how long a receipt is polled for.
type WatchConfig struct {
	MaxPolls  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultWatchConfig() WatchConfig {
	return WatchConfig{MaxPolls: 30, BaseDelay: 2 * time.Second, MaxDelay: 15 * time.Second}
}

// Watcher observes submitted transactions until they are mined. It never
// resubmits anything.
type Watcher struct {
	reader ReceiptReader
	cfg    WatchConfig
	logger *zap.Logger
}

func NewWatcher(reader ReceiptReader, cfg WatchConfig, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{reader: reader, cfg: cfg, logger: logger}
}

// Wait polls for the receipt of hash with exponential backoff.
func (w *Watcher) Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := withRetry(ctx, w.cfg.MaxPolls, w.cfg.BaseDelay, w.cfg.MaxDelay, func(ctx context.Context) error {
		r, err := w.reader.TransactionReceipt(ctx, hash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				w.logger.Warn("receipt fetch failed", zap.String("hash", hash.Hex()), zap.Error(err))
			}
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", hash.Hex(), err)
	}
	return receipt, nil
}

// StatusOf maps a receipt to a history status.
func StatusOf(receipt *types.Receipt) model.TxStatus {
	if receipt.Status == types.ReceiptStatusSuccessful {
		return model.TxConfirmedAssumed
	}
	return model.TxReverted
}

// Sync waits for every submitted transaction in store and records the outcome.
// It returns the entries it updated.
func (w *Watcher) Sync(ctx context.Context, store storage.Storage) ([]model.PendingTransaction, error) {
	entries, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	var updated []model.PendingTransaction
	for _, tx := range entries {
		if tx.Status != model.TxSubmitted {
			continue
		}
		receipt, err := w.Wait(ctx, common.HexToHash(tx.Hash))
		if err != nil {
			if ctx.Err() != nil {
				return updated, ctx.Err()
			}
			w.logger.Info("transaction still pending", zap.String("hash", tx.Hash))
			continue
		}
		tx.Status = StatusOf(receipt)
		if err := store.UpdateStatus(ctx, tx.Hash, tx.Status); err != nil {
			return updated, err
		}
		w.logger.Info("transaction settled",
			zap.String("hash", tx.Hash),
			zap.String("status", string(tx.Status)),
			zap.Uint64("block", receipt.BlockNumber.Uint64()),
		)
		updated = append(updated, tx)
	}
	return updated, nil
}
