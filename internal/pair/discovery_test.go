package pair

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"liquiditySupply/internal/chain/chaintest"
	"liquiditySupply/internal/model"
)

var (
	factory = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	pairAt  = common.HexToAddress("0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11")
	weth    = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	dai     = model.Asset{Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Decimals: 18, Symbol: "DAI"}
	usdc    = model.Asset{Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6, Symbol: "USDC"}
	eth     = model.NativeAsset("ETH", "Ether")
)

func newFake(t *testing.T, pairs map[[2]common.Address]common.Address, token0 common.Address, r0, r1 *big.Int) *chaintest.FakeEth {
	t.Helper()
	fabi, err := FactoryABI()
	if err != nil {
		t.Fatalf("factory abi: %v", err)
	}
	pabi, err := PairABI()
	if err != nil {
		t.Fatalf("pair abi: %v", err)
	}
	return &chaintest.FakeEth{
		ChainIDValue: 1,
		Contracts: map[common.Address]chaintest.ContractFunc{
			factory: chaintest.ABIContract(fabi, map[string]func([]interface{}) ([]interface{}, error){
				"getPair": func(args []interface{}) ([]interface{}, error) {
					key := [2]common.Address{args[0].(common.Address), args[1].(common.Address)}
					if addr, ok := pairs[key]; ok {
						return []interface{}{addr}, nil
					}
					if addr, ok := pairs[[2]common.Address{key[1], key[0]}]; ok {
						return []interface{}{addr}, nil
					}
					return []interface{}{common.Address{}}, nil
				},
			}),
			pairAt: chaintest.ABIContract(pabi, map[string]func([]interface{}) ([]interface{}, error){
				"token0":      func([]interface{}) ([]interface{}, error) { return []interface{}{token0}, nil },
				"getReserves": func([]interface{}) ([]interface{}, error) { return []interface{}{r0, r1, uint32(0)}, nil },
			}),
		},
	}
}

func TestPairStateActiveOrdersReserves(t *testing.T) {
	// token0 is WETH: 10 ETH against 20,000 USDC.
	fake := newFake(t, map[[2]common.Address]common.Address{{weth, usdc.Address}: pairAt}, weth,
		new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)), big.NewInt(20_000_000_000))
	d := NewDiscovery(chaintest.NewClient(t, fake), factory, big.NewInt(1), nil)

	state, err := d.PairState(context.Background(), model.AssetPair{A: usdc, B: eth})
	if err != nil {
		t.Fatalf("pair state: %v", err)
	}
	if state.Status != model.PairActive {
		t.Fatalf("expected active pool, got %s", state.Status)
	}
	if state.Rate.Cmp(big.NewRat(1, 2000)) != 0 {
		t.Fatalf("expected 1/2000 ETH per USDC, got %s", state.Rate)
	}
	if state.ReserveA.Int64() != 20_000_000_000 {
		t.Fatalf("reserve A must be the USDC reserve, got %s", state.ReserveA)
	}
}

func TestPairStateNoPair(t *testing.T) {
	fake := newFake(t, nil, weth, big.NewInt(0), big.NewInt(0))
	d := NewDiscovery(chaintest.NewClient(t, fake), factory, big.NewInt(1), nil)

	state, err := d.PairState(context.Background(), model.AssetPair{A: dai, B: usdc})
	if err != nil {
		t.Fatalf("pair state: %v", err)
	}
	if !state.NoLiquidity() {
		t.Fatalf("expected no liquidity, got %s", state.Status)
	}
}

func TestPairStateEmptyReserves(t *testing.T) {
	fake := newFake(t, map[[2]common.Address]common.Address{{dai.Address, usdc.Address}: pairAt}, dai.Address, big.NewInt(0), big.NewInt(0))
	d := NewDiscovery(chaintest.NewClient(t, fake), factory, big.NewInt(1), nil)

	state, err := d.PairState(context.Background(), model.AssetPair{A: dai, B: usdc})
	if err != nil {
		t.Fatalf("pair state: %v", err)
	}
	if !state.NoLiquidity() || state.Pair != pairAt {
		t.Fatalf("expected existing pair without liquidity, got %+v", state)
	}
}

func TestPairStateInvalid(t *testing.T) {
	d := NewDiscovery(nil, factory, big.NewInt(1), nil)
	for _, assets := range []model.AssetPair{
		{A: dai, B: dai},
		{A: dai},
		{A: eth, B: model.Asset{Address: weth}},
	} {
		state, err := d.PairState(context.Background(), assets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Status != model.PairInvalid {
			t.Fatalf("expected invalid for %+v, got %s", assets, state.Status)
		}
	}
}

func TestPairStateUnwrappedNativeIsInvalid(t *testing.T) {
	d := NewDiscovery(nil, factory, big.NewInt(999_999), nil)
	state, err := d.PairState(context.Background(), model.AssetPair{A: eth, B: dai})
	if err != nil {
		t.Fatalf("missing wrapped token must not fail discovery: %v", err)
	}
	if state.Status != model.PairInvalid {
		t.Fatalf("expected invalid, got %s", state.Status)
	}
}
