package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySupply/internal/mint"
	"liquiditySupply/internal/model"
)

func runApprove(cmd *cobra.Command, _ []string) error {
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
	if a.session.Account() == (common.Address{}) {
		return mint.ErrConnectWallet
	}
	wait, _ := cmd.Flags().GetBool("wait")

	assets := a.session.Assets()
	for _, field := range model.Fields {
		if a.session.ApprovalStates()[field] != model.ApprovalNotApproved {
			continue
		}
		asset := assets.Get(field)
		fmt.Fprintf(a.out, "Approving %s for the router\n", asset)

		hash, err := a.session.Approve(ctx, field)
		if err != nil {
			return err
		}
		if hash == (common.Hash{}) {
			color.Yellow("Approval of %s rejected.", asset)
			continue
		}
		a.logger.Info("approval submitted", zap.String("asset", asset.String()), zap.String("hash", hash.Hex()))
		fmt.Fprintf(a.out, "Approval sent: %s\n", color.CyanString(hash.Hex()))
		if !wait {
			continue
		}

		s := startSpinner(a.out, fmt.Sprintf("Waiting for %s approval...", asset))
		receipt, err := a.watcher.Wait(ctx, hash)
		s.Stop()
		if err != nil {
			return err
		}
		a.session.ConfirmApproval(field, receipt.Status == types.ReceiptStatusSuccessful)
	}

	if err := a.session.RefreshApprovals(ctx); err != nil {
		return err
	}
	printApprovals(a.out, a.session)
	return nil
}
