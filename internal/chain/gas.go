package chain

import "math/big"

// DefaultGasMarginBps adds 20% on top of an estimate.
const DefaultGasMarginBps uint32 = 2000

// GasWithMargin scales gas by (10000 + bps) / 10000.
func GasWithMargin(gas uint64, bps uint32) uint64 {
	scaled := new(big.Int).SetUint64(gas)
	scaled.Mul(scaled, big.NewInt(10000+int64(bps)))
	scaled.Quo(scaled, big.NewInt(10000))
	if !scaled.IsUint64() {
		return ^uint64(0)
	}
	return scaled.Uint64()
}
