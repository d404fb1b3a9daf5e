package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PairStatus is the liquidity state of the pair for the selected assets.
type PairStatus uint8

const (
	PairInvalid PairStatus = iota
	PairNoLiquidity
	PairActive
)

func (s PairStatus) String() string {
	switch s {
	case PairNoLiquidity:
		return "no_liquidity"
	case PairActive:
		return "active"
	default:
		return "invalid"
	}
}

// PoolState is the pool snapshot the deriver works against.
// Rate is expressed in whole units of B per one whole unit of A and is only
// set when Status is PairActive.
type PoolState struct {
	Status   PairStatus
	Rate     *big.Rat
	Pair     common.Address
	ReserveA *big.Int
	ReserveB *big.Int
}

func (p PoolState) NoLiquidity() bool {
	return p.Status == PairNoLiquidity
}

func (p PoolState) Active() bool {
	return p.Status == PairActive
}
