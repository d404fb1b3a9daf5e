package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySupply/internal/amount"
	"liquiditySupply/internal/analytics"
	"liquiditySupply/internal/chain"
	"liquiditySupply/internal/config"
	"liquiditySupply/internal/erc20"
	"liquiditySupply/internal/history"
	"liquiditySupply/internal/model"
	"liquiditySupply/internal/pair"
	"liquiditySupply/internal/settings"
	"liquiditySupply/internal/storage"
	"liquiditySupply/internal/storage/postgres"
	"liquiditySupply/internal/supply"
	"liquiditySupply/internal/txflow"
	"liquiditySupply/internal/wallet"
)

// app is the wiring shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer

	history storage.Storage
	jsonl   *storage.JsonlStorage
	pg      *postgres.Store

	client  *chain.Client
	chainID *big.Int
	prefs   settings.Settings
	watcher *history.Watcher
	pools   *pair.Discovery
	tokens  *erc20.AssetCache
	session *supply.Session
}

func loadApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}
	a.jsonl = storage.NewJsonlStorage(cfg.HistoryOut)
	stores := storage.Multi{a.jsonl}
	if cfg.PGDSN != "" {
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			a.close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		a.pg = pg
		stores = append(stores, pg)
	}
	a.history = stores
	return a, nil
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	_ = a.logger.Sync()
}

// dial connects to the RPC node and sets up receipt polling.
func (a *app) dial(ctx context.Context) error {
	if a.cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	client, err := chain.NewClient(ctx, a.cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	a.client = client
	a.tokens = erc20.NewAssetCache(client, a.logger)

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	a.chainID = chainID

	a.watcher = history.NewWatcher(client, history.WatchConfig{
		MaxPolls:  a.cfg.ReceiptPolls,
		BaseDelay: a.cfg.ReceiptBackoff,
		MaxDelay:  history.DefaultWatchConfig().MaxDelay,
	}, a.logger)
	return nil
}

// openSession builds a session over the configured pair and types the
// amounts given on the command line.
func (a *app) openSession(ctx context.Context, cmd *cobra.Command) error {
	prefs, err := a.loadPrefs()
	if err != nil {
		return err
	}
	a.prefs = prefs

	if err := a.dial(ctx); err != nil {
		return err
	}

	routerAddr, err := parseAddress("router", a.cfg.Router)
	if err != nil {
		return err
	}
	factoryAddr, err := parseAddress("factory", a.cfg.Factory)
	if err != nil {
		return err
	}
	if len(a.cfg.Pair) != 2 {
		return fmt.Errorf("pair is required: two assets")
	}

	var assets model.AssetPair
	for _, field := range model.Fields {
		asset, err := a.resolveAsset(ctx, a.cfg.Pair[field])
		if err != nil {
			return err
		}
		assets.Set(field, asset)
	}

	var tx *chain.Transactor
	if a.cfg.PrivateKey != "" {
		tx, err = chain.NewTransactor(a.client, a.cfg.PrivateKey, a.logger)
		if err != nil {
			return err
		}
	}
	keyWallet := wallet.NewKeyWallet(tx)
	prompt := wallet.NewPrompt(keyWallet, cmd.InOrStdin(), a.out, describeCall)

	a.pools = pair.NewDiscovery(a.client, factoryAddr, a.chainID, a.logger)
	tracker := txflow.NewTracker(prompt, a.history, analytics.NewLogSink(a.logger), txflow.Options{
		GasMarginBps: a.cfg.GasMarginBps,
		Logger:       a.logger,
	})

	a.session = supply.NewSession(supply.Config{
		ChainID:  a.chainID,
		Router:   routerAddr,
		Settings: prefs,
		Logger:   a.logger,
	}, supply.Deps{
		Pools:      a.pools,
		Allowances: erc20.NewReader(a.client),
		Balances:   supply.Balances{Native: a.client, Tokens: erc20.NewReader(a.client)},
		Approver:   erc20.NewApprover(prompt, a.cfg.GasMarginBps, a.logger),
		Connector:  keyWallet,
		Clock:      a.client,
		Tracker:    tracker,
	}, assets)
	prompt.AutoConfirm = a.cfg.Yes || !a.session.NeedsConfirmation()

	if tx != nil {
		if _, err := a.session.Connect(ctx); err != nil {
			return err
		}
	}
	if err := a.session.Sync(ctx); err != nil {
		return err
	}

	var inputs [2]amountFlag
	for _, field := range model.Fields {
		name := strings.ToLower(field.String())
		inputs[field].text, _ = cmd.Flags().GetString("amount-" + name)
		inputs[field].max, _ = cmd.Flags().GetBool("max-" + name)
	}
	if err := typeAmounts(a.session, inputs); err != nil {
		return err
	}
	if a.session.Account() != (common.Address{}) {
		return a.session.RefreshApprovals(ctx)
	}
	return nil
}

var errOneAmount = errors.New("pool has liquidity: give an amount for one asset only, the other is derived from the pool rate")

type amountFlag struct {
	text string
	max  bool
}

type amountInput interface {
	Pool() model.PoolState
	TypeInput(field model.Field, value string)
	MaxInput(field model.Field) (string, error)
}

// typeAmounts types the command line amounts into the form. A pool with
// liquidity takes one amount and derives the other.
func typeAmounts(in amountInput, inputs [2]amountFlag) error {
	given := 0
	for _, field := range model.Fields {
		flag := inputs[field]
		if flag.text != "" && flag.max {
			name := strings.ToLower(field.String())
			return fmt.Errorf("--amount-%s and --max-%s are exclusive", name, name)
		}
		if flag.text != "" || flag.max {
			given++
		}
	}
	if given == 2 && in.Pool().Active() {
		return errOneAmount
	}

	for _, field := range model.Fields {
		switch flag := inputs[field]; {
		case flag.max:
			if _, err := in.MaxInput(field); err != nil {
				return err
			}
		case flag.text != "":
			in.TypeInput(field, flag.text)
		}
	}
	return nil
}

// loadPrefs reads saved settings and applies command line overrides.
func (a *app) loadPrefs() (settings.Settings, error) {
	prefs, _, err := settings.NewStore(a.cfg.SettingsPath).Load()
	if err != nil {
		return settings.Settings{}, err
	}
	if a.cfg.SlippageSet {
		prefs.SlippageBps = a.cfg.SlippageBps
	}
	if a.cfg.Deadline > 0 {
		prefs.DeadlineSecs = int64(a.cfg.Deadline.Seconds())
	}
	if a.cfg.Expert {
		prefs.ExpertMode = true
	}
	if err := prefs.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return prefs, nil
}

func (a *app) resolveAsset(ctx context.Context, ref string) (model.Asset, error) {
	if strings.EqualFold(ref, a.cfg.NativeSymbol) || strings.EqualFold(ref, "native") {
		return model.NativeAsset(a.cfg.NativeSymbol, a.cfg.NativeName), nil
	}
	addr, err := parseAddress("asset", ref)
	if err != nil {
		return model.Asset{}, err
	}
	return a.tokens.Resolve(ctx, addr)
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func describeCall(to common.Address, data []byte, value *big.Int, gas uint64) string {
	if value == nil {
		value = new(big.Int)
	}
	return fmt.Sprintf("to %s  value %s  gas %d  calldata %d bytes",
		to.Hex(), amount.FormatExact(value, 18), gas, len(data))
}
