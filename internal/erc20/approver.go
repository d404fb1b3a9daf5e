package erc20

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"go.uber.org/zap"

	"liquiditySupply/internal/chain"
)

// Sender estimates and submits calls from the user's account.
type Sender interface {
	EstimateGas(ctx context.Context, to common.Address, data []byte, value *big.Int) (uint64, error)
	Send(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (common.Hash, error)
}

// Approver submits approve transactions. It asks for an unlimited allowance
// and falls back to the exact amount when the token refuses to estimate it.
type Approver struct {
	sender    Sender
	marginBps uint32
	logger    *zap.Logger
}

func NewApprover(sender Sender, marginBps uint32, logger *zap.Logger) *Approver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Approver{sender: sender, marginBps: marginBps, logger: logger}
}

// SubmitApproval sends approve(spender, max) or approve(spender, amount).
func (a *Approver) SubmitApproval(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	approveAmount := math.MaxBig256
	data, err := ApproveData(spender, approveAmount)
	if err != nil {
		return common.Hash{}, err
	}

	gas, err := a.sender.EstimateGas(ctx, token, data, nil)
	if err != nil {
		if chain.IsUserRejected(err) {
			return common.Hash{}, err
		}
		a.logger.Debug("max approval estimate failed, using exact amount",
			zap.String("token", token.Hex()),
			zap.Error(err),
		)
		approveAmount = amount
		if data, err = ApproveData(spender, approveAmount); err != nil {
			return common.Hash{}, err
		}
		if gas, err = a.sender.EstimateGas(ctx, token, data, nil); err != nil {
			return common.Hash{}, err
		}
	}

	hash, err := a.sender.Send(ctx, token, data, nil, chain.GasWithMargin(gas, a.marginBps))
	if err != nil {
		return common.Hash{}, err
	}
	a.logger.Info("approval submitted",
		zap.String("token", token.Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("amount", approveAmount.String()),
		zap.String("hash", hash.Hex()),
	)
	return hash, nil
}
