package txflow

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySupply/internal/analytics"
	"liquiditySupply/internal/chain"
	"liquiditySupply/internal/model"
	"liquiditySupply/internal/router"
)

// State of the deposit attempt.
type State uint8

const (
	Idle State = iota
	Estimating
	Submitting
	Submitted
	Failed
)

func (s State) String() string {
	switch s {
	case Estimating:
		return "estimating"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Caller estimates and submits router calls from the user's account.
type Caller interface {
	EstimateGas(ctx context.Context, to common.Address, data []byte, value *big.Int) (uint64, error)
	Send(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (common.Hash, error)
}

// Recorder receives every accepted submission.
type Recorder interface {
	Record(ctx context.Context, tx model.PendingTransaction) error
}

// Request is one deposit attempt.
type Request struct {
	Call    router.CallSpec
	Assets  model.AssetPair
	Amounts model.AmountPair
	ChainID uint64
	From    common.Address
}

// Result of an attempt. Rejected is set when the user declined in the wallet;
// Discarded when the attempt was dismissed before submission.
type Result struct {
	Hash      common.Hash
	Summary   string
	Rejected  bool
	Discarded bool
}

type Options struct {
	GasMarginBps uint32
	Logger       *zap.Logger
}

// Tracker runs at most one deposit attempt at a time.
type Tracker struct {
	caller   Caller
	recorder Recorder
	events   analytics.Sink
	margin   uint32
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	state      State
	attempting bool
	hash       common.Hash
	err        error
	cancel     context.CancelFunc
}

func NewTracker(caller Caller, recorder Recorder, events analytics.Sink, opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		caller:   caller,
		recorder: recorder,
		events:   events,
		margin:   opts.GasMarginBps,
		logger:   logger,
		now:      time.Now,
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Hash is the last accepted submission, kept until Dismiss.
func (t *Tracker) Hash() common.Hash {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hash
}

// Err is the failure of the last attempt.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Add estimates, submits and records a deposit call. While another attempt
// is running it does nothing and returns ErrAttemptInProgress; callers may
// treat that as a no-op.
func (t *Tracker) Add(ctx context.Context, req Request) (Result, error) {
	t.mu.Lock()
	if t.attempting {
		t.mu.Unlock()
		return Result{}, ErrAttemptInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	t.attempting = true
	t.cancel = cancel
	t.state = Estimating
	t.hash = common.Hash{}
	t.err = nil
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.attempting = false
		t.cancel = nil
		t.mu.Unlock()
	}()

	data, err := req.Call.Data()
	if err != nil {
		return Result{}, t.fail(err)
	}

	gas, err := t.caller.EstimateGas(ctx, req.Call.To, data, req.Call.Value)
	if err != nil {
		switch {
		case chain.IsUserRejected(err):
			t.reset()
			return Result{Rejected: true}, nil
		case ctx.Err() != nil:
			t.reset()
			return Result{Discarded: true}, nil
		}
		t.logger.Error("gas estimate failed", zap.String("method", req.Call.Method), zap.Error(err))
		return Result{}, t.fail(&SimulationRevertError{Err: err})
	}
	if ctx.Err() != nil {
		t.reset()
		return Result{Discarded: true}, nil
	}

	t.setState(Submitting)
	gasLimit := chain.GasWithMargin(gas, t.margin)
	hash, err := t.caller.Send(context.WithoutCancel(ctx), req.Call.To, data, req.Call.Value, gasLimit)
	if err != nil {
		if chain.IsUserRejected(err) {
			t.reset()
			return Result{Rejected: true}, nil
		}
		t.logger.Error("submission failed", zap.String("method", req.Call.Method), zap.Error(err))
		return Result{}, t.fail(&SubmissionError{Err: err})
	}

	summary := Summary(req.Assets, req.Amounts)
	t.mu.Lock()
	t.state = Submitted
	t.hash = hash
	t.mu.Unlock()

	recordCtx := context.WithoutCancel(ctx)
	if t.recorder != nil {
		entry := model.PendingTransaction{
			Hash:    hash.Hex(),
			Summary: summary,
			Status:  model.TxSubmitted,
			ChainID: req.ChainID,
			From:    req.From.Hex(),
			AddedAt: t.now().UTC().Format(time.RFC3339Nano),
		}
		if err := t.recorder.Record(recordCtx, entry); err != nil {
			t.logger.Warn("history record failed", zap.String("hash", hash.Hex()), zap.Error(err))
		}
	}
	if t.events != nil {
		t.events.Emit(recordCtx, analytics.AddLiquidity(req.Assets))
	}

	t.logger.Info("liquidity supplied",
		zap.String("hash", hash.Hex()),
		zap.String("summary", summary),
		zap.String("method", req.Call.Method),
		zap.Uint64("gas_limit", gasLimit),
	)

	t.setState(Idle)
	return Result{Hash: hash, Summary: summary}, nil
}

// Dismiss closes the confirmation. An attempt still estimating is discarded.
// It reports whether a hash had been produced, in which case the caller clears
// the typed input.
func (t *Tracker) Dismiss() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.attempting && t.state == Estimating && t.cancel != nil {
		t.cancel()
	}
	hadHash := t.hash != (common.Hash{})
	t.hash = common.Hash{}
	t.err = nil
	if t.state == Failed {
		t.state = Idle
	}
	return hadHash
}

func (t *Tracker) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Tracker) reset() {
	t.mu.Lock()
	t.state = Idle
	t.err = nil
	t.mu.Unlock()
}

func (t *Tracker) fail(err error) error {
	t.mu.Lock()
	t.state = Failed
	t.err = err
	t.mu.Unlock()
	return err
}
