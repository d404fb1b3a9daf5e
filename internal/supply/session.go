package supply

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySupply/internal/amount"
	"liquiditySupply/internal/approval"
	"liquiditySupply/internal/mint"
	"liquiditySupply/internal/model"
	"liquiditySupply/internal/router"
	"liquiditySupply/internal/settings"
	"liquiditySupply/internal/slippage"
	"liquiditySupply/internal/txflow"
	"liquiditySupply/internal/wallet"
)

// ErrBalanceUnknown is returned by MaxInput before balances are synced.
var ErrBalanceUnknown = errors.New("balance not loaded")

type PoolSource interface {
	PairState(ctx context.Context, assets model.AssetPair) (model.PoolState, error)
}

type BalanceReader interface {
	Balance(ctx context.Context, asset model.Asset, owner common.Address) (*big.Int, error)
}

type BlockClock interface {
	LatestBlockTimestamp(ctx context.Context) (uint64, error)
}

type Config struct {
	ChainID  *big.Int
	Router   common.Address
	Settings settings.Settings
	Logger   *zap.Logger
}

// Deps are the collaborators a session drives. Balances may be nil.
type Deps struct {
	Pools      PoolSource
	Allowances approval.AllowanceReader
	Balances   BalanceReader
	Approver   approval.Approver
	Connector  wallet.Connector
	Clock      BlockClock
	Tracker    *txflow.Tracker
}

// Session is one user's add-liquidity flow for a fixed pair of slots.
type Session struct {
	cfg       Config
	deps      Deps
	approvals *approval.Pair
	logger    *zap.Logger

	mu       sync.Mutex
	account  common.Address
	assets   model.AssetPair
	form     mint.Form
	pool     model.PoolState
	balances model.AmountPair
}

func NewSession(cfg Config, deps Deps, assets model.AssetPair) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		cfg:       cfg,
		deps:      deps,
		approvals: approval.NewPair(assets, cfg.Router, logger),
		logger:    logger,
		assets:    assets,
	}
}

// Connect asks the wallet for the active account.
func (s *Session) Connect(ctx context.Context) (common.Address, error) {
	account, err := s.deps.Connector.RequestConnection(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", mint.ErrConnectWallet, err)
	}
	s.mu.Lock()
	s.account = account
	s.mu.Unlock()
	return account, nil
}

func (s *Session) Account() common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) Assets() model.AssetPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets
}

func (s *Session) Pool() model.PoolState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool
}

func (s *Session) Form() mint.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SelectAsset changes one slot. Its approval restarts and the pool must be synced again.
func (s *Session) SelectAsset(field model.Field, asset model.Asset) {
	s.mu.Lock()
	s.assets.Set(field, asset)
	s.pool = model.PoolState{}
	s.balances.Set(field, nil)
	s.mu.Unlock()
	s.approvals.SetAsset(field, asset)
}

// SetPool replaces the pool snapshot and re-checks both approvals.
func (s *Session) SetPool(pool model.PoolState) {
	s.mu.Lock()
	s.pool = pool
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	s.mu.Unlock()
	s.approvals.Require(amounts)
}

// TypeInput records text typed into a box. Approvals are re-checked against
// the new amounts using the last allowance read.
func (s *Session) TypeInput(field model.Field, value string) {
	s.mu.Lock()
	s.form.TypeInput(field, value, s.pool.NoLiquidity())
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	s.mu.Unlock()
	s.approvals.Require(amounts)
}

// MaxInput types the largest spendable amount of field's asset into its box
// and returns the text typed.
func (s *Session) MaxInput(field model.Field) (string, error) {
	s.mu.Lock()
	asset := s.assets.Get(field)
	spend := mint.MaxAmountSpend(asset, s.balances.Get(field))
	s.mu.Unlock()
	if spend == nil {
		return "", fmt.Errorf("max %s: %w", asset, ErrBalanceUnknown)
	}
	text := amount.FormatExact(spend, asset.Decimals)
	s.TypeInput(field, text)
	return text, nil
}

// Sync reloads the pool, the balances and both allowances.
func (s *Session) Sync(ctx context.Context) error {
	assets := s.Assets()
	pool, err := s.deps.Pools.PairState(ctx, assets)
	if err != nil {
		return fmt.Errorf("pair state: %w", err)
	}
	s.SetPool(pool)

	account := s.Account()
	if account == (common.Address{}) {
		return nil
	}
	if s.deps.Balances != nil {
		var balances model.AmountPair
		for _, field := range model.Fields {
			bal, err := s.deps.Balances.Balance(ctx, assets.Get(field), account)
			if err != nil {
				return fmt.Errorf("balance %s: %w", assets.Get(field), err)
			}
			balances.Set(field, bal)
		}
		s.mu.Lock()
		s.balances = balances
		s.mu.Unlock()
	}
	return s.RefreshApprovals(ctx)
}

// Amounts derives both legs from the form.
func (s *Session) Amounts() (model.AmountPair, mint.ParseErrors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mint.Derive(s.form, s.assets, s.pool)
}

// Formatted returns the text of both amount boxes.
func (s *Session) Formatted() [2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	return mint.Formatted(s.form, amounts, s.assets, s.pool)
}

// MinAmounts applies the slippage tolerance to the derived amounts.
func (s *Session) MinAmounts() (model.AmountPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	return slippage.MinAmounts(amounts, s.cfg.Settings.SlippageBps, s.pool)
}

// Validate returns the upstream reason the deposit is blocked, or nil.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *Session) validateLocked() error {
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	return mint.Validate(mint.ValidationInput{
		Account:  s.account,
		Assets:   s.assets,
		Pool:     s.pool,
		Amounts:  amounts,
		Balances: s.balances,
	})
}

// RefreshApprovals re-reads both allowances for the current amounts.
func (s *Session) RefreshApprovals(ctx context.Context) error {
	account := s.Account()
	if account == (common.Address{}) {
		return mint.ErrConnectWallet
	}
	amounts, _ := s.Amounts()
	return s.approvals.Refresh(ctx, s.deps.Allowances, account, amounts)
}

func (s *Session) ApprovalStates() [2]model.ApprovalState {
	return s.approvals.States()
}

// Approve requests an allowance for one field.
func (s *Session) Approve(ctx context.Context, field model.Field) (common.Hash, error) {
	return s.approvals.Machine(field).Approve(ctx, s.deps.Approver)
}

// ConfirmApproval resolves a pending approval once mined.
func (s *Session) ConfirmApproval(field model.Field, success bool) {
	s.approvals.Machine(field).Confirm(success)
}

// Blocker returns why the Supply action is disabled, or nil.
func (s *Session) Blocker() error {
	s.mu.Lock()
	validationErr := s.validateLocked()
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	s.mu.Unlock()
	s.approvals.Require(amounts)
	return s.approvals.Gate(validationErr)
}

// Prepare builds the router call once nothing blocks the deposit.
func (s *Session) Prepare(ctx context.Context) (router.CallSpec, error) {
	if err := s.Blocker(); err != nil {
		return router.CallSpec{}, err
	}

	s.mu.Lock()
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	assets, pool, account := s.assets, s.pool, s.account
	s.mu.Unlock()

	mins, err := slippage.MinAmounts(amounts, s.cfg.Settings.SlippageBps, pool)
	if err != nil {
		return router.CallSpec{}, err
	}

	blockTime, err := s.deps.Clock.LatestBlockTimestamp(ctx)
	if err != nil {
		return router.CallSpec{}, fmt.Errorf("%w: latest block: %w", router.ErrMissingDeadline, err)
	}
	deadline := router.DeadlineFromBlock(blockTime, s.cfg.Settings.Deadline())

	return router.BuildCall(router.BuildInput{
		ChainID:   s.cfg.ChainID,
		Router:    s.cfg.Router,
		Assets:    assets,
		Amounts:   amounts,
		Mins:      mins,
		Recipient: account,
		Deadline:  deadline,
	})
}

// Add submits the deposit. Without an account it asks the wallet to connect first.
func (s *Session) Add(ctx context.Context) (txflow.Result, error) {
	if s.Account() == (common.Address{}) {
		if _, err := s.Connect(ctx); err != nil {
			return txflow.Result{}, err
		}
	}

	call, err := s.Prepare(ctx)
	if err != nil {
		return txflow.Result{}, err
	}

	s.mu.Lock()
	amounts, _ := mint.Derive(s.form, s.assets, s.pool)
	req := txflow.Request{
		Call:    call,
		Assets:  s.assets,
		Amounts: amounts,
		From:    s.account,
	}
	s.mu.Unlock()
	if s.cfg.ChainID != nil {
		req.ChainID = s.cfg.ChainID.Uint64()
	}

	return s.deps.Tracker.Add(ctx, req)
}

// Dismiss closes the confirmation; a produced hash clears the typed input.
func (s *Session) Dismiss() {
	if s.deps.Tracker.Dismiss() {
		s.TypeInput(model.FieldA, "")
	}
}

// NeedsConfirmation is false in expert mode.
func (s *Session) NeedsConfirmation() bool {
	return !s.cfg.Settings.ExpertMode
}

// PendingText describes the deposit while the wallet confirms it.
func (s *Session) PendingText() string {
	amounts, _ := s.Amounts()
	return txflow.PendingText(s.Assets(), amounts)
}
