package mint

import (
	"liquiditySupply/internal/amount"
	"liquiditySupply/internal/model"
)

// DisplaySignificant is the precision of a derived amount shown in its box.
const DisplaySignificant = 6

// Formatted returns the text each amount box shows.
func Formatted(form Form, amounts model.AmountPair, assets model.AssetPair, pool model.PoolState) [2]string {
	var out [2]string
	indep := form.Independent
	dep := indep.Dependent()

	out[indep] = form.TypedValue
	if pool.NoLiquidity() {
		out[dep] = form.OtherTypedValue
		return out
	}
	out[dep] = amount.FormatSignificant(amounts.Get(dep), assets.Get(dep).Decimals, DisplaySignificant)
	return out
}
