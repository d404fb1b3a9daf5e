package mint

import (
	"math/big"

	"liquiditySupply/internal/model"
)

// NativeGasReserve is held back from a native balance to pay for gas (0.01 in 18 decimals).
var NativeGasReserve = big.NewInt(1e16)

// MaxAmountSpend is the largest amount of asset a user can put into a box.
// Tokens can be spent in full; a native balance at or below the reserve
// leaves nothing to spend.
func MaxAmountSpend(asset model.Asset, balance *big.Int) *big.Int {
	if balance == nil {
		return nil
	}
	if !asset.Native {
		return new(big.Int).Set(balance)
	}
	if balance.Cmp(NativeGasReserve) > 0 {
		return new(big.Int).Sub(balance, NativeGasReserve)
	}
	return new(big.Int)
}
