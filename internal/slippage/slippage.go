package slippage

import (
	"errors"
	"math/big"

	"liquiditySupply/internal/model"
)

const (
	// BpsDenominator is 100% expressed in basis points.
	BpsDenominator = 10000
	// DefaultToleranceBps is 0.5%.
	DefaultToleranceBps uint32 = 50
)

var ErrInvalidTolerance = errors.New("slippage tolerance must be between 0 and 10000 bps")

var bpsDenominator = big.NewInt(BpsDenominator)

// MinAmount returns exact * (10000 - bps) / 10000, truncated toward zero.
func MinAmount(exact *big.Int, bps uint32) (*big.Int, error) {
	if bps > BpsDenominator {
		return nil, ErrInvalidTolerance
	}
	if exact == nil {
		return nil, nil
	}
	out := new(big.Int).Mul(exact, big.NewInt(int64(BpsDenominator-bps)))
	return out.Quo(out, bpsDenominator), nil
}

// MinAmounts applies the tolerance to each present leg. A pool without
// liquidity has no price to slip against, so its minimums equal the amounts.
func MinAmounts(amounts model.AmountPair, bps uint32, pool model.PoolState) (model.AmountPair, error) {
	if bps > BpsDenominator {
		return model.AmountPair{}, ErrInvalidTolerance
	}
	if pool.NoLiquidity() {
		bps = 0
	}

	var out model.AmountPair
	for _, field := range model.Fields {
		bound, err := MinAmount(amounts.Get(field), bps)
		if err != nil {
			return model.AmountPair{}, err
		}
		out.Set(field, bound)
	}
	return out, nil
}
