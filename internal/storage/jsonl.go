package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"liquiditySupply/internal/model"
)

// JsonlStorage keeps transaction history as an append-only JSONL file.
// A status change appends a new line; the last line per hash wins.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path, now: time.Now}
}

// Record appends a transaction entry.
func (s *JsonlStorage) Record(_ context.Context, tx model.PendingTransaction) error {
	if tx.Hash == "" {
		return fmt.Errorf("transaction hash is required")
	}
	if tx.Status == "" {
		tx.Status = model.TxSubmitted
	}
	if tx.AddedAt == "" {
		tx.AddedAt = s.now().UTC().Format(time.RFC3339Nano)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(tx)
}

// UpdateStatus appends the entry for hash with a new status.
func (s *JsonlStorage) UpdateStatus(_ context.Context, hash string, status model.TxStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		return err
	}
	for _, tx := range entries {
		if tx.Hash != hash {
			continue
		}
		tx.Status = status
		tx.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
		return s.appendLocked(tx)
	}
	return fmt.Errorf("transaction %s not found", hash)
}

// List returns the latest entry per hash in first-recorded order.
func (s *JsonlStorage) List(_ context.Context) ([]model.PendingTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *JsonlStorage) appendLocked(tx model.PendingTransaction) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	line, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	writer := bufio.NewWriter(file)
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write transaction: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (s *JsonlStorage) readLocked() ([]model.PendingTransaction, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer file.Close()

	var (
		order []string
		byKey = make(map[string]model.PendingTransaction)
	)
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var tx model.PendingTransaction
		if err := json.Unmarshal(scanner.Bytes(), &tx); err != nil {
			return nil, fmt.Errorf("parse history line %d: %w", line, err)
		}
		if _, seen := byKey[tx.Hash]; !seen {
			order = append(order, tx.Hash)
		}
		byKey[tx.Hash] = tx
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	out := make([]model.PendingTransaction, 0, len(order))
	for _, hash := range order {
		out = append(out, byKey[hash])
	}
	return out, nil
}
