package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySupply/internal/config"
	"liquiditySupply/internal/settings"
)

func runSettings(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := settings.NewStore(cfg.SettingsPath)
	prefs, saved, err := store.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	if flags.Changed("slippage-bps") {
		prefs.SlippageBps = cfg.SlippageBps
		changed = true
	}
	if flags.Changed("deadline") {
		prefs.DeadlineSecs = int64(cfg.Deadline / time.Second)
		changed = true
	}
	if flags.Changed("expert") {
		prefs.ExpertMode, _ = flags.GetBool("expert")
		changed = true
	}

	out := cmd.OutOrStdout()
	if changed {
		if err := store.Save(prefs); err != nil {
			return err
		}
		logger.Info("settings saved",
			zap.String("path", cfg.SettingsPath),
			zap.Uint32("slippage_bps", prefs.SlippageBps),
			zap.Int64("deadline_secs", prefs.DeadlineSecs),
			zap.Bool("expert_mode", prefs.ExpertMode),
		)
		saved = true
		fmt.Fprintln(out, color.GreenString("Settings saved to %s", cfg.SettingsPath))
	}

	source := "defaults"
	if saved {
		source = cfg.SettingsPath
	}
	fmt.Fprintf(out, "Slippage tolerance: %s\n", bpsPercent(prefs.SlippageBps))
	fmt.Fprintf(out, "Deadline:           %s\n", prefs.Deadline())
	fmt.Fprintf(out, "Expert mode:        %t\n", prefs.ExpertMode)
	fmt.Fprintf(out, "Source:             %s\n", source)
	return nil
}
