package pair

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySupply/internal/mint"
	"liquiditySupply/internal/model"
	"liquiditySupply/internal/router"
)

// Caller is the eth_call surface pool discovery needs.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Discovery reads V2 pair state through a factory.
type Discovery struct {
	caller  Caller
	factory common.Address
	chainID *big.Int
	logger  *zap.Logger
}

func NewDiscovery(caller Caller, factory common.Address, chainID *big.Int, logger *zap.Logger) *Discovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discovery{caller: caller, factory: factory, chainID: chainID, logger: logger}
}

// PairState returns Invalid for an unusable selection (including a native
// asset with no wrapped token on this chain), NoLiquidity when the
// pair does not exist or holds no reserves, and Active with the current rate.
func (d *Discovery) PairState(ctx context.Context, assets model.AssetPair) (model.PoolState, error) {
	if assets.A.IsZero() || assets.B.IsZero() || assets.A.Equal(assets.B) {
		return model.PoolState{Status: model.PairInvalid}, nil
	}
	var tokens [2]common.Address
	for _, field := range model.Fields {
		token, err := router.TokenAddress(assets.Get(field), d.chainID)
		if err != nil {
			d.logger.Warn("no wrapped token for native asset, pair is invalid",
				zap.String("asset", assets.Get(field).String()),
				zap.Error(err),
			)
			return model.PoolState{Status: model.PairInvalid}, nil
		}
		tokens[field] = token
	}
	tokenA, tokenB := tokens[model.FieldA], tokens[model.FieldB]
	if tokenA == tokenB {
		return model.PoolState{Status: model.PairInvalid}, nil
	}

	factoryABI, err := FactoryABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := call(ctx, d.caller, d.factory, factoryABI, "getPair", tokenA, tokenB)
	if err != nil {
		return model.PoolState{}, err
	}
	pairAddr, ok := values[0].(common.Address)
	if !ok {
		return model.PoolState{}, fmt.Errorf("getPair: unexpected type %T", values[0])
	}
	if pairAddr == (common.Address{}) {
		return model.PoolState{Status: model.PairNoLiquidity}, nil
	}

	pairABI, err := PairABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err = call(ctx, d.caller, pairAddr, pairABI, "token0")
	if err != nil {
		return model.PoolState{}, err
	}
	token0, ok := values[0].(common.Address)
	if !ok {
		return model.PoolState{}, fmt.Errorf("token0: unexpected type %T", values[0])
	}
	values, err = call(ctx, d.caller, pairAddr, pairABI, "getReserves")
	if err != nil {
		return model.PoolState{}, err
	}
	if len(values) < 2 {
		return model.PoolState{}, fmt.Errorf("getReserves: short result")
	}
	reserve0, ok0 := values[0].(*big.Int)
	reserve1, ok1 := values[1].(*big.Int)
	if !ok0 || !ok1 {
		return model.PoolState{}, fmt.Errorf("getReserves: unexpected types %T/%T", values[0], values[1])
	}

	reserveA, reserveB := reserve0, reserve1
	if token0 != tokenA {
		reserveA, reserveB = reserve1, reserve0
	}

	state := model.PoolState{
		Status:   model.PairNoLiquidity,
		Pair:     pairAddr,
		ReserveA: reserveA,
		ReserveB: reserveB,
	}
	if rate := mint.RateFromReserves(reserveA, reserveB, assets.A.Decimals, assets.B.Decimals); rate != nil {
		state.Status = model.PairActive
		state.Rate = rate
	}

	d.logger.Debug("pair state",
		zap.String("pair", pairAddr.Hex()),
		zap.Stringer("status", state.Status),
		zap.String("reserve_a", reserveA.String()),
		zap.String("reserve_b", reserveB.String()),
	)
	return state, nil
}

func call(ctx context.Context, caller Caller, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}
