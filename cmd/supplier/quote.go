package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runQuote(cmd *cobra.Command, _ []string) error {
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

	a.logger.Debug("quote",
		zap.String("pair", a.session.Assets().Label()),
		zap.Stringer("pool", a.session.Pool().Status),
		zap.Uint32("slippage_bps", a.prefs.SlippageBps),
	)

	if err := printQuote(a.out, a.session, a.prefs.SlippageBps); err != nil {
		return err
	}
	if a.session.Account() != (common.Address{}) {
		printApprovals(a.out, a.session)
	}
	printBlocker(a.out, a.session)
	return nil
}
