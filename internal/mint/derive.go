package mint

import (
	"math/big"

	"liquiditySupply/internal/amount"
	"liquiditySupply/internal/model"
)

// ParseErrors holds the per-field parse failure of the last derivation.
type ParseErrors [2]error

func (p ParseErrors) For(field model.Field) error {
	return p[field]
}

// Derive computes the deposit amounts for the form against the pool state.
// A field whose text fails to parse is absent; the failure is reported in
// ParseErrors and never aborts the other field.
func Derive(form Form, assets model.AssetPair, pool model.PoolState) (model.AmountPair, ParseErrors) {
	var (
		out  model.AmountPair
		errs ParseErrors
	)

	switch pool.Status {
	case model.PairNoLiquidity:
		for _, field := range model.Fields {
			parsed, err := amount.Parse(form.Text(field), assets.Get(field).Decimals)
			errs[field] = err
			out.Set(field, parsed)
		}
		return out, errs

	case model.PairActive:
		indep := form.Independent
		dep := indep.Dependent()

		parsed, err := amount.Parse(form.TypedValue, assets.Get(indep).Decimals)
		errs[indep] = err
		out.Set(indep, parsed)
		if parsed == nil || parsed.Sign() == 0 || pool.Rate == nil || pool.Rate.Sign() <= 0 {
			return out, errs
		}

		rate := pool.Rate
		if indep == model.FieldB {
			rate = new(big.Rat).Inv(pool.Rate)
		}
		out.Set(dep, Quote(parsed, rate, assets.Get(indep).Decimals, assets.Get(dep).Decimals))
		return out, errs

	default:
		return out, errs
	}
}

// Quote converts raw units of one asset into raw units of another at a
// whole-unit rate, rounding down.
func Quote(raw *big.Int, rate *big.Rat, fromDecimals, toDecimals uint8) *big.Int {
	num := new(big.Int).Mul(raw, rate.Num())
	num.Mul(num, pow10(toDecimals))
	den := new(big.Int).Mul(rate.Denom(), pow10(fromDecimals))
	return num.Quo(num, den)
}

// RateFromReserves returns whole units of B per whole unit of A. It returns
// nil when either reserve is empty.
func RateFromReserves(reserveA, reserveB *big.Int, decimalsA, decimalsB uint8) *big.Rat {
	if reserveA == nil || reserveB == nil || reserveA.Sign() <= 0 || reserveB.Sign() <= 0 {
		return nil
	}
	num := new(big.Int).Mul(reserveB, pow10(decimalsA))
	den := new(big.Int).Mul(reserveA, pow10(decimalsB))
	return new(big.Rat).SetFrac(num, den)
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
