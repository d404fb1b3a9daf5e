package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySupply/internal/model"
)

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	syncPending, _ := cmd.Flags().GetBool("sync")
	if syncPending {
		if err := a.dial(ctx); err != nil {
			return err
		}
		s := startSpinner(a.out, "Checking submitted transactions...")
		updated, err := a.watcher.Sync(ctx, a.history)
		s.Stop()
		if err != nil {
			return err
		}
		a.logger.Info("history synced", zap.Int("updated", len(updated)))
	}

	hash, _ := cmd.Flags().GetString("hash")
	if hash != "" {
		tx, ok, err := a.lookup(ctx, hash)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("transaction %s not found in history", hash)
		}
		printEntry(a, tx)
		return nil
	}

	entries, err := a.history.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No transactions recorded.")
		return nil
	}
	for _, tx := range entries {
		printEntry(a, tx)
	}
	return nil
}

// lookup finds one entry, preferring the Postgres index when configured.
func (a *app) lookup(ctx context.Context, hash string) (model.PendingTransaction, bool, error) {
	if a.pg != nil {
		return a.pg.Get(ctx, hash)
	}
	entries, err := a.jsonl.List(ctx)
	if err != nil {
		return model.PendingTransaction{}, false, err
	}
	for _, tx := range entries {
		if strings.EqualFold(tx.Hash, hash) {
			return tx, true, nil
		}
	}
	return model.PendingTransaction{}, false, nil
}

func printEntry(a *app, tx model.PendingTransaction) {
	fmt.Fprintf(a.out, "%s  %-18s  %s  %s\n", tx.AddedAt, statusLabel(tx.Status), tx.Hash, tx.Summary)
}
