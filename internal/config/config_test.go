package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.StringSlice("pair", nil, "")
	flags.Uint32("slippage-bps", 0, "")
	flags.Duration("deadline", 0, "")
	flags.Bool("yes", false, "")
	return flags
}

// chdir keeps a stray ./config.yaml out of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", newFlags())
	require.NoError(t, err)
	assert.Equal(t, "ETH", cfg.NativeSymbol)
	assert.Equal(t, uint32(2000), cfg.GasMarginBps)
	assert.Equal(t, "./data/history.jsonl", cfg.HistoryOut)
	assert.False(t, cfg.SlippageSet)
	assert.Zero(t, cfg.Deadline)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFlagsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SUPPLIER_RPC", "http://env:8545")
	t.Setenv("SUPPLIER_PG_DSN", "postgres://localhost/supply")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--pair", "ETH, 0x6B175474E89094C44Da98b954EedeAC495271d0F", "--slippage-bps", "100", "--deadline", "5m"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "http://env:8545", cfg.RPCURL)
	assert.Equal(t, "postgres://localhost/supply", cfg.PGDSN)
	assert.Equal(t, []string{"ETH", "0x6B175474E89094C44Da98b954EedeAC495271d0F"}, cfg.Pair)
	assert.True(t, cfg.SlippageSet)
	assert.Equal(t, uint32(100), cfg.SlippageBps)
	assert.Equal(t, 5*time.Minute, cfg.Deadline)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "supplier.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rpc: http://file:8545\npair: [WBNB, ETH]\nexpert: true\n"), 0o644))

	cfg, err := Load(path, newFlags())
	require.NoError(t, err)
	assert.Equal(t, "http://file:8545", cfg.RPCURL)
	assert.Equal(t, []string{"WBNB", "ETH"}, cfg.Pair)
	assert.True(t, cfg.Expert)
}

func TestLoadRejectsSingleAsset(t *testing.T) {
	chdir(t, t.TempDir())
	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--pair", "ETH"}))

	_, err := Load("", flags)
	require.Error(t, err)
}
