package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"liquiditySupply/internal/chain"
	"liquiditySupply/internal/history"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL       string
	Router       string
	Factory      string
	PrivateKey   string
	Pair         []string
	NativeSymbol string
	NativeName   string

	// Zero values mean the saved settings apply.
	SlippageBps    uint32
	SlippageSet    bool
	Deadline       time.Duration
	Expert         bool
	Yes            bool
	GasMarginBps   uint32
	HistoryOut     string
	PGDSN          string
	SettingsPath   string
	ReceiptPolls   int
	ReceiptBackoff time.Duration
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SUPPLIER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	watch := history.DefaultWatchConfig()
	v.SetDefault("native-symbol", "ETH")
	v.SetDefault("native-name", "Ether")
	v.SetDefault("gas-margin-bps", chain.DefaultGasMarginBps)
	v.SetDefault("history-out", "./data/history.jsonl")
	v.SetDefault("settings", "./data/settings.json")
	v.SetDefault("receipt-polls", watch.MaxPolls)
	v.SetDefault("receipt-backoff", watch.BaseDelay)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc"),
		Router:         v.GetString("router"),
		Factory:        v.GetString("factory"),
		PrivateKey:     v.GetString("private-key"),
		Pair:           getStringSlice(v, "pair"),
		NativeSymbol:   v.GetString("native-symbol"),
		NativeName:     v.GetString("native-name"),
		SlippageBps:    v.GetUint32("slippage-bps"),
		SlippageSet:    v.IsSet("slippage-bps"),
		Deadline:       v.GetDuration("deadline"),
		Expert:         v.GetBool("expert"),
		Yes:            v.GetBool("yes"),
		GasMarginBps:   v.GetUint32("gas-margin-bps"),
		HistoryOut:     v.GetString("history-out"),
		PGDSN:          v.GetString("pg-dsn"),
		SettingsPath:   v.GetString("settings"),
		ReceiptPolls:   v.GetInt("receipt-polls"),
		ReceiptBackoff: v.GetDuration("receipt-backoff"),
		LogLevel:       v.GetString("log-level"),
	}

	if len(cfg.Pair) != 0 && len(cfg.Pair) != 2 {
		return Config{}, fmt.Errorf("pair needs exactly two assets, got %d", len(cfg.Pair))
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
