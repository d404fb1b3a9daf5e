package pair

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"liquiditySupply/internal/model"
)

func mintLog(t *testing.T, at, sender common.Address, amount0, amount1 *big.Int, index uint) *types.Log {
	t.Helper()
	pabi, err := PairABI()
	if err != nil {
		t.Fatalf("pair abi: %v", err)
	}
	event := pabi.Events["Mint"]
	data, err := event.Inputs.NonIndexed().Pack(amount0, amount1)
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}
	return &types.Log{
		Address: at,
		Topics:  []common.Hash{event.ID, common.BytesToHash(sender.Bytes())},
		Data:    data,
		Index:   index,
	}
}

func TestDecodeMintsSkipsOtherEvents(t *testing.T) {
	router := common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	logs := []*types.Log{
		{Address: dai.Address, Topics: []common.Hash{common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")}},
		mintLog(t, pairAt, router, big.NewInt(5), big.NewInt(7), 3),
	}

	mints, err := DecodeMints(logs)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(mints) != 1 {
		t.Fatalf("expected one mint, got %d", len(mints))
	}
	m := mints[0]
	if m.Pair != pairAt || m.Sender != router || m.LogIndex != 3 {
		t.Fatalf("unexpected mint %+v", m)
	}
	if m.Amount0.Int64() != 5 || m.Amount1.Int64() != 7 {
		t.Fatalf("unexpected amounts %s/%s", m.Amount0, m.Amount1)
	}
}

func TestDepositedOrdersByField(t *testing.T) {
	d := NewDiscovery(nil, factory, big.NewInt(1), nil)
	other := common.HexToAddress("0x0000000000000000000000000000000000000bad")
	receipt := &types.Receipt{Logs: []*types.Log{
		mintLog(t, other, common.Address{}, big.NewInt(1), big.NewInt(1), 0),
		// DAI sorts before USDC, so DAI is token0.
		mintLog(t, pairAt, common.Address{}, big.NewInt(300), big.NewInt(400), 1),
	}}
	pool := model.PoolState{Status: model.PairActive, Pair: pairAt}

	got, ok, err := d.Deposited(receipt, model.AssetPair{A: usdc, B: dai}, pool)
	if err != nil || !ok {
		t.Fatalf("deposited: ok=%v err=%v", ok, err)
	}
	if got.A.Int64() != 400 || got.B.Int64() != 300 {
		t.Fatalf("unexpected amounts A=%s B=%s", got.A, got.B)
	}

	got, ok, err = d.Deposited(receipt, model.AssetPair{A: dai, B: usdc}, pool)
	if err != nil || !ok {
		t.Fatalf("deposited: ok=%v err=%v", ok, err)
	}
	if got.A.Int64() != 300 || got.B.Int64() != 400 {
		t.Fatalf("unexpected amounts A=%s B=%s", got.A, got.B)
	}
}

func TestDepositedFirstPoolTakesFirstMint(t *testing.T) {
	d := NewDiscovery(nil, factory, big.NewInt(1), nil)
	receipt := &types.Receipt{Logs: []*types.Log{
		mintLog(t, pairAt, common.Address{}, big.NewInt(9), big.NewInt(2), 0),
	}}

	got, ok, err := d.Deposited(receipt, model.AssetPair{A: eth, B: usdc}, model.PoolState{Status: model.PairNoLiquidity})
	if err != nil || !ok {
		t.Fatalf("deposited: ok=%v err=%v", ok, err)
	}
	// WETH (0xC02a) sorts after USDC (0xA0b8).
	if got.A.Int64() != 2 || got.B.Int64() != 9 {
		t.Fatalf("unexpected amounts A=%s B=%s", got.A, got.B)
	}
}

func TestDepositedWithoutMint(t *testing.T) {
	d := NewDiscovery(nil, factory, big.NewInt(1), nil)
	_, ok, err := d.Deposited(&types.Receipt{}, model.AssetPair{A: dai, B: usdc}, model.PoolState{})
	if err != nil || ok {
		t.Fatalf("expected no deposit, ok=%v err=%v", ok, err)
	}
}
