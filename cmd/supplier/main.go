package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "supplier",
		Short:        "Add liquidity to Uniswap V2 style pools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Derive both deposit amounts and their slippage bounds",
		RunE:  runQuote,
	}
	addSessionFlags(quoteCmd)
	root.AddCommand(quoteCmd)

	approveCmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve the router to spend the deposit tokens",
		RunE:  runApprove,
	}
	addSessionFlags(approveCmd)
	approveCmd.Flags().Bool("wait", true, "wait for each approval to be mined")
	root.AddCommand(approveCmd)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Supply liquidity to the pair",
		RunE:  runAdd,
	}
	addSessionFlags(addCmd)
	addCmd.Flags().Bool("wait", false, "wait for the deposit to be mined")
	root.AddCommand(addCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show submitted deposits and settle pending ones",
		RunE:  runStatus,
	}
	statusCmd.Flags().String("rpc", "", "RPC URL (needed with --sync)")
	statusCmd.Flags().String("hash", "", "show a single transaction")
	statusCmd.Flags().Bool("sync", false, "poll receipts for submitted transactions")
	addHistoryFlags(statusCmd)
	root.AddCommand(statusCmd)

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved transaction settings",
		RunE:  runSettings,
	}
	settingsCmd.Flags().Uint32("slippage-bps", 0, "slippage tolerance in basis points")
	settingsCmd.Flags().Duration("deadline", 0, "transaction deadline window")
	settingsCmd.Flags().Bool("expert", false, "skip confirmation prompts")
	settingsCmd.Flags().String("settings", "./data/settings.json", "settings file path")
	settingsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(settingsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("router", "", "router contract address")
	cmd.Flags().String("factory", "", "factory contract address")
	cmd.Flags().String("private-key", "", "hex private key of the supplying account")
	cmd.Flags().StringSlice("pair", nil, "assets A and B as symbol of the native coin or token address (comma-separated)")
	cmd.Flags().String("native-symbol", "ETH", "symbol of the chain's native coin")
	cmd.Flags().String("native-name", "Ether", "name of the chain's native coin")
	cmd.Flags().String("amount-a", "", "amount typed for asset A")
	cmd.Flags().String("amount-b", "", "amount typed for asset B")
	cmd.Flags().Bool("max-a", false, "type the spendable balance of asset A (needs --private-key)")
	cmd.Flags().Bool("max-b", false, "type the spendable balance of asset B (needs --private-key)")
	cmd.Flags().Uint32("slippage-bps", 0, "slippage tolerance override in basis points")
	cmd.Flags().Duration("deadline", 0, "deadline window override")
	cmd.Flags().Bool("expert", false, "expert mode override")
	cmd.Flags().BoolP("yes", "y", false, "skip the signing prompt")
	cmd.Flags().Uint32("gas-margin-bps", 2000, "gas limit margin in basis points")
	cmd.Flags().String("settings", "./data/settings.json", "settings file path")
	cmd.Flags().Int("receipt-polls", 30, "maximum receipt polls")
	cmd.Flags().Duration("receipt-backoff", 2*time.Second, "initial receipt poll backoff")
	addHistoryFlags(cmd)
}

func addHistoryFlags(cmd *cobra.Command) {
	cmd.Flags().String("history-out", "./data/history.jsonl", "transaction history JSONL path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for transaction history")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
