package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySupply/internal/amount"
	"liquiditySupply/internal/history"
	"liquiditySupply/internal/mint"
	"liquiditySupply/internal/model"
)

func runAdd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.openSession(ctx, cmd); err != nil {
		return err
	}
	if err := printQuote(a.out, a.session, a.prefs.SlippageBps); err != nil {
		return err
	}
	if printBlocker(a.out, a.session) {
		return a.session.Blocker()
	}

	fmt.Fprintln(a.out, a.session.PendingText())
	result, err := a.session.Add(ctx)
	defer a.session.Dismiss()
	if err != nil {
		color.Red("Deposit failed: %v", err)
		return err
	}
	switch {
	case result.Rejected:
		color.Yellow("Transaction rejected.")
		return nil
	case result.Discarded:
		color.Yellow("Deposit discarded.")
		return nil
	}

	fmt.Fprintf(a.out, "%s\n", color.GreenString(result.Summary))
	fmt.Fprintf(a.out, "Transaction: %s\n", color.CyanString(result.Hash.Hex()))

	wait, _ := cmd.Flags().GetBool("wait")
	if !wait {
		color.Cyan("Track it with: supplier status --hash %s --sync", result.Hash.Hex())
		return nil
	}

	s := startSpinner(a.out, "Waiting for confirmation...")
	receipt, err := a.watcher.Wait(ctx, result.Hash)
	s.Stop()
	if err != nil {
		return err
	}
	status := history.StatusOf(receipt)
	if err := a.history.UpdateStatus(ctx, result.Hash.Hex(), status); err != nil {
		a.logger.Warn("history update failed", zap.String("hash", result.Hash.Hex()), zap.Error(err))
	}
	fmt.Fprintf(a.out, "Status: %s (block %d)\n", statusLabel(status), receipt.BlockNumber.Uint64())
	if status == model.TxReverted {
		return fmt.Errorf("transaction %s reverted", result.Hash.Hex())
	}

	assets := a.session.Assets()
	deposited, ok, err := a.pools.Deposited(receipt, assets, a.session.Pool())
	if err != nil {
		a.logger.Warn("decode mint failed", zap.String("hash", result.Hash.Hex()), zap.Error(err))
		return nil
	}
	if ok {
		fmt.Fprintf(a.out, "Deposited %s %s and %s %s\n",
			amount.FormatSignificant(deposited.A, assets.A.Decimals, mint.DisplaySignificant), assets.A,
			amount.FormatSignificant(deposited.B, assets.B.Decimals, mint.DisplaySignificant), assets.B)
	}
	return nil
}
