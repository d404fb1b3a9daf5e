package txflow

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"liquiditySupply/internal/analytics"
	"liquiditySupply/internal/chain"
	"liquiditySupply/internal/model"
	"liquiditySupply/internal/router"
)

var (
	eth = model.NativeAsset("ETH", "Ether")
	dai = model.Asset{Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Decimals: 18, Symbol: "DAI"}
)

type fakeCaller struct {
	mu          sync.Mutex
	estimateErr error
	sendErr     error
	estimates   int
	sends       int
	sentGas     uint64
	sentValue   *big.Int
	onEstimate  func(ctx context.Context) error
}

func (f *fakeCaller) EstimateGas(ctx context.Context, _ common.Address, _ []byte, _ *big.Int) (uint64, error) {
	f.mu.Lock()
	f.estimates++
	hook := f.onEstimate
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return 0, err
		}
	}
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return 100000, nil
}

func (f *fakeCaller) Send(_ context.Context, _ common.Address, _ []byte, value *big.Int, gas uint64) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sentGas = gas
	f.sentValue = value
	return common.HexToHash("0xabc"), nil
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []model.PendingTransaction
}

func (m *memoryRecorder) Record(_ context.Context, tx model.PendingTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, tx)
	return nil
}

func ether(whole, tenths int64) *big.Int {
	out := new(big.Int).Mul(big.NewInt(whole*10+tenths), big.NewInt(1e17))
	return out
}

func request(t *testing.T) Request {
	t.Helper()
	assets := model.AssetPair{A: eth, B: dai}
	amounts := model.AmountPair{A: ether(1, 5), B: ether(300, 0)}
	call, err := router.BuildCall(router.BuildInput{
		ChainID:   big.NewInt(1),
		Router:    common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
		Assets:    assets,
		Amounts:   amounts,
		Mins:      amounts,
		Recipient: common.HexToAddress("0x01"),
		Deadline:  big.NewInt(1700001200),
	})
	require.NoError(t, err)
	return Request{Call: call, Assets: assets, Amounts: amounts, ChainID: 1, From: common.HexToAddress("0x01")}
}

func TestAddSuccess(t *testing.T) {
	caller := &fakeCaller{}
	recorder := &memoryRecorder{}
	events := &analytics.Memory{}
	tracker := NewTracker(caller, recorder, events, Options{GasMarginBps: chain.DefaultGasMarginBps})

	res, err := tracker.Add(context.Background(), request(t))
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0xabc"), res.Hash)
	require.Equal(t, "Add 1.5 ETH and 300 DAI", res.Summary)
	require.Equal(t, uint64(120000), caller.sentGas)
	require.Equal(t, "1500000000000000000", caller.sentValue.String())

	require.Equal(t, Idle, tracker.State())
	require.Equal(t, res.Hash, tracker.Hash())

	require.Len(t, recorder.entries, 1)
	require.Equal(t, res.Hash.Hex(), recorder.entries[0].Hash)
	require.Equal(t, model.TxSubmitted, recorder.entries[0].Status)
	require.Equal(t, "Add 1.5 ETH and 300 DAI", recorder.entries[0].Summary)

	got := events.Events()
	require.Len(t, got, 1)
	require.Equal(t, "Liquidity", got[0].Category)
	require.Equal(t, "Add", got[0].Action)
	require.Equal(t, "ETH/DAI", got[0].Label)

	require.True(t, tracker.Dismiss(), "dismiss after a hash must ask to clear input")
	require.False(t, tracker.Dismiss())
	require.Equal(t, common.Hash{}, tracker.Hash())
}

func TestAddSimulationRevert(t *testing.T) {
	caller := &fakeCaller{estimateErr: errors.New("execution reverted: UniswapV2Router: INSUFFICIENT_B_AMOUNT")}
	recorder := &memoryRecorder{}
	tracker := NewTracker(caller, recorder, nil, Options{})

	_, err := tracker.Add(context.Background(), request(t))
	var revert *SimulationRevertError
	require.True(t, errors.As(err, &revert))
	require.Equal(t, "execution reverted: UniswapV2Router: INSUFFICIENT_B_AMOUNT", err.Error())
	require.Equal(t, Failed, tracker.State())
	require.Equal(t, 0, caller.sends)
	require.Empty(t, recorder.entries)

	tracker.Dismiss()
	require.Equal(t, Idle, tracker.State())
}

func TestAddRejectedIsSilent(t *testing.T) {
	for name, caller := range map[string]*fakeCaller{
		"estimate": {estimateErr: &chain.UserRejectedError{}},
		"send":     {sendErr: &chain.UserRejectedError{}},
	} {
		t.Run(name, func(t *testing.T) {
			recorder := &memoryRecorder{}
			tracker := NewTracker(caller, recorder, nil, Options{})
			res, err := tracker.Add(context.Background(), request(t))
			require.NoError(t, err)
			require.True(t, res.Rejected)
			require.Equal(t, Idle, tracker.State())
			require.NoError(t, tracker.Err())
			require.Empty(t, recorder.entries)
		})
	}
}

func TestAddSubmissionError(t *testing.T) {
	caller := &fakeCaller{sendErr: errors.New("insufficient funds for gas * price + value")}
	tracker := NewTracker(caller, nil, nil, Options{})

	_, err := tracker.Add(context.Background(), request(t))
	var submission *SubmissionError
	require.True(t, errors.As(err, &submission))
	require.Equal(t, Failed, tracker.State())
	require.Equal(t, err, tracker.Err())
}

func TestAddWhileInFlightIsNoop(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	caller := &fakeCaller{onEstimate: func(context.Context) error {
		close(entered)
		<-release
		return nil
	}}
	tracker := NewTracker(caller, nil, nil, Options{})
	req := request(t)

	done := make(chan error, 1)
	go func() {
		_, err := tracker.Add(context.Background(), req)
		done <- err
	}()
	<-entered
	require.Equal(t, Estimating, tracker.State())

	_, err := tracker.Add(context.Background(), req)
	require.ErrorIs(t, err, ErrAttemptInProgress)
	require.Equal(t, Estimating, tracker.State())

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, 1, caller.estimates)
	require.Equal(t, 1, caller.sends)
}

func TestDismissWhileEstimatingDiscards(t *testing.T) {
	entered := make(chan struct{})
	caller := &fakeCaller{onEstimate: func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}}
	tracker := NewTracker(caller, nil, nil, Options{})
	req := request(t)

	done := make(chan Result, 1)
	go func() {
		res, _ := tracker.Add(context.Background(), req)
		done <- res
	}()
	<-entered
	require.False(t, tracker.Dismiss())

	res := <-done
	require.True(t, res.Discarded)
	require.Equal(t, Idle, tracker.State())
	require.Equal(t, 0, caller.sends)
}

func TestPendingText(t *testing.T) {
	amounts := model.AmountPair{A: big.NewInt(1234567), B: big.NewInt(2000000)}
	assets := model.AssetPair{A: model.Asset{Symbol: "USDC", Decimals: 6}, B: model.Asset{Symbol: "USDT", Decimals: 6}}
	require.Equal(t, "Supplying 1.23457 USDC and 2 USDT", PendingText(assets, amounts))
	require.Equal(t, "Add 1.23 USDC and 2 USDT", Summary(assets, amounts))
}
