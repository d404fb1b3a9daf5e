package storage

import (
	"context"
	"errors"

	"liquiditySupply/internal/model"
)

// Storage is the transaction history store.
type Storage interface {
	Record(ctx context.Context, tx model.PendingTransaction) error
	UpdateStatus(ctx context.Context, hash string, status model.TxStatus) error
	List(ctx context.Context) ([]model.PendingTransaction, error)
}

// Multi writes to every store and reads from the first.
type Multi []Storage

func (m Multi) Record(ctx context.Context, tx model.PendingTransaction) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, tx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) UpdateStatus(ctx context.Context, hash string, status model.TxStatus) error {
	var errs []error
	for _, s := range m {
		if err := s.UpdateStatus(ctx, hash, status); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) List(ctx context.Context) ([]model.PendingTransaction, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].List(ctx)
}
