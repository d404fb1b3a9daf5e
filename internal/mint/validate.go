package mint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquiditySupply/internal/model"
)

var (
	ErrConnectWallet   = errors.New("connect wallet")
	ErrInvalidPair     = errors.New("invalid pair")
	ErrIdenticalAssets = errors.New("identical assets selected")
	ErrEnterAmount     = errors.New("enter an amount")
)

// InsufficientBalanceError blocks a deposit larger than the account balance.
type InsufficientBalanceError struct {
	Field  model.Field
	Symbol string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance", e.Symbol)
}

// ValidationInput is everything the deposit checks need. A nil balance is
// treated as unknown and never blocks.
type ValidationInput struct {
	Account  common.Address
	Assets   model.AssetPair
	Pool     model.PoolState
	Amounts  model.AmountPair
	Balances model.AmountPair
}

// Validate returns the first reason the deposit cannot proceed, or nil.
func Validate(in ValidationInput) error {
	if in.Account == (common.Address{}) {
		return ErrConnectWallet
	}
	if in.Assets.A.IsZero() || in.Assets.B.IsZero() || in.Pool.Status == model.PairInvalid {
		if !in.Assets.A.IsZero() && in.Assets.A.Equal(in.Assets.B) {
			return ErrIdenticalAssets
		}
		return ErrInvalidPair
	}
	if in.Assets.A.Equal(in.Assets.B) {
		return ErrIdenticalAssets
	}
	for _, field := range model.Fields {
		if !positive(in.Amounts.Get(field)) {
			return ErrEnterAmount
		}
	}
	for _, field := range model.Fields {
		balance := in.Balances.Get(field)
		if balance != nil && balance.Cmp(in.Amounts.Get(field)) < 0 {
			return &InsufficientBalanceError{Field: field, Symbol: in.Assets.Get(field).String()}
		}
	}
	return nil
}

func positive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
