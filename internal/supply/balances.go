package supply

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquiditySupply/internal/model"
)

type NativeBalancer interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

type TokenBalancer interface {
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
}

// Balances reads native or token balances depending on the asset.
type Balances struct {
	Native NativeBalancer
	Tokens TokenBalancer
}

func (b Balances) Balance(ctx context.Context, asset model.Asset, owner common.Address) (*big.Int, error) {
	if asset.Native {
		return b.Native.BalanceAt(ctx, owner)
	}
	return b.Tokens.BalanceOf(ctx, asset.Address, owner)
}
