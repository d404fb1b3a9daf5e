package router

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"liquiditySupply/internal/model"
)

const (
	MethodAddLiquidity    = "addLiquidity"
	MethodAddLiquidityETH = "addLiquidityETH"
)

var (
	ErrMissingDeadline = errors.New("missing deadline")
	ErrBothNative      = errors.New("both assets are the native coin")
	ErrAmountOverflow  = errors.New("amount does not fit in uint256")
)

// IncompleteAmountsError lists the amounts missing at build time.
type IncompleteAmountsError struct {
	Missing []string
}

func (e *IncompleteAmountsError) Error() string {
	return "incomplete amounts: " + strings.Join(e.Missing, ", ")
}

// CallSpec is a fully ordered router call.
type CallSpec struct {
	To     common.Address
	Method string
	Args   []interface{}
	Value  *big.Int
}

// Data packs the calldata.
func (c CallSpec) Data() ([]byte, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	data, err := parsed.Pack(c.Method, c.Args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", c.Method, err)
	}
	return data, nil
}

// BuildInput carries everything a deposit call is built from.
type BuildInput struct {
	ChainID   *big.Int
	Router    common.Address
	Assets    model.AssetPair
	Amounts   model.AmountPair
	Mins      model.AmountPair
	Recipient common.Address
	Deadline  *big.Int
}

// BuildCall selects the router entry point and orders its arguments. With one
// native side the token leg always comes first and the native amount rides as
// call value.
func BuildCall(in BuildInput) (CallSpec, error) {
	var missing []string
	for _, field := range model.Fields {
		if in.Amounts.Get(field) == nil {
			missing = append(missing, "amount "+field.String())
		}
		if in.Mins.Get(field) == nil {
			missing = append(missing, "minimum "+field.String())
		}
	}
	if len(missing) > 0 {
		return CallSpec{}, &IncompleteAmountsError{Missing: missing}
	}
	if in.Deadline == nil {
		return CallSpec{}, ErrMissingDeadline
	}
	for _, v := range []*big.Int{in.Amounts.A, in.Amounts.B, in.Mins.A, in.Mins.B, in.Deadline} {
		if err := checkUint256(v); err != nil {
			return CallSpec{}, err
		}
	}

	nativeA, nativeB := in.Assets.A.Native, in.Assets.B.Native
	if nativeA && nativeB {
		return CallSpec{}, ErrBothNative
	}

	if nativeA || nativeB {
		wrapped, err := WrappedNative(in.ChainID)
		if err != nil {
			return CallSpec{}, err
		}

		var tokenField, nativeField model.Field
		if nativeB {
			tokenField, nativeField = model.FieldA, model.FieldB
		} else {
			tokenField, nativeField = model.FieldB, model.FieldA
		}

		token := in.Assets.Get(tokenField).Address
		if token == wrapped {
			return CallSpec{}, ErrBothNative
		}
		return CallSpec{
			To:     in.Router,
			Method: MethodAddLiquidityETH,
			Args: []interface{}{
				token,
				in.Amounts.Get(tokenField),
				in.Mins.Get(tokenField),
				in.Mins.Get(nativeField),
				in.Recipient,
				in.Deadline,
			},
			Value: new(big.Int).Set(in.Amounts.Get(nativeField)),
		}, nil
	}

	return CallSpec{
		To:     in.Router,
		Method: MethodAddLiquidity,
		Args: []interface{}{
			in.Assets.A.Address,
			in.Assets.B.Address,
			in.Amounts.A,
			in.Amounts.B,
			in.Mins.A,
			in.Mins.B,
			in.Recipient,
			in.Deadline,
		},
	}, nil
}

func checkUint256(v *big.Int) error {
	if v.Sign() < 0 {
		return ErrAmountOverflow
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return ErrAmountOverflow
	}
	return nil
}
