package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"liquiditySupply/internal/model"
)

func TestJsonlStorageRecordAndUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	store := NewJsonlStorage(path)
	store.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	if err := store.Record(ctx, model.PendingTransaction{Hash: "0x01", Summary: "Add 1 ETH and 300 DAI", ChainID: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, model.PendingTransaction{Hash: "0x02", Summary: "Add 2 ETH and 600 DAI", ChainID: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.UpdateStatus(ctx, "0x01", model.TxConfirmedAssumed); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Hash != "0x01" || got[0].Status != model.TxConfirmedAssumed || got[0].UpdatedAt == "" {
		t.Fatalf("unexpected first entry %+v", got[0])
	}
	if got[1].Status != model.TxSubmitted || got[1].AddedAt != "2023-11-14T22:13:20Z" {
		t.Fatalf("unexpected second entry %+v", got[1])
	}
}

func TestJsonlStorageMissingFile(t *testing.T) {
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "none.jsonl"))
	got, err := store.List(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty history, got %v %v", got, err)
	}
	if err := store.UpdateStatus(context.Background(), "0x09", model.TxReverted); err == nil {
		t.Fatalf("expected error for unknown hash")
	}
}

type failing struct{ Storage }

func (failing) Record(context.Context, model.PendingTransaction) error { return context.Canceled }

func TestMultiRecordsEverywhere(t *testing.T) {
	dir := t.TempDir()
	a := NewJsonlStorage(filepath.Join(dir, "a.jsonl"))
	b := NewJsonlStorage(filepath.Join(dir, "b.jsonl"))
	multi := Multi{a, failing{}, b}

	err := multi.Record(context.Background(), model.PendingTransaction{Hash: "0x01"})
	if err == nil {
		t.Fatalf("expected joined error from failing store")
	}
	for _, s := range []*JsonlStorage{a, b} {
		got, err := s.List(context.Background())
		if err != nil || len(got) != 1 {
			t.Fatalf("expected entry in every healthy store, got %v %v", got, err)
		}
	}
}
