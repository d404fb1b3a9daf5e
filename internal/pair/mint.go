package pair

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"liquiditySupply/internal/model"
	"liquiditySupply/internal/router"
)

// Mint is a decoded pair Mint event.
type Mint struct {
	Pair     common.Address
	Sender   common.Address
	Amount0  *big.Int
	Amount1  *big.Int
	LogIndex uint
}

// DecodeMints returns every pair Mint event among logs.
func DecodeMints(logs []*types.Log) ([]Mint, error) {
	pairABI, err := PairABI()
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}
	event := pairABI.Events["Mint"]

	var out []Mint
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}
		if len(log.Topics) != 2 {
			return nil, fmt.Errorf("mint log %d: expected 2 topics, got %d", log.Index, len(log.Topics))
		}

		var indexed struct {
			Sender common.Address
		}
		if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
		values, err := event.Inputs.NonIndexed().Unpack(log.Data)
		if err != nil {
			return nil, fmt.Errorf("unpack Mint: %w", err)
		}
		if len(values) != 2 {
			return nil, fmt.Errorf("unexpected mint values: %d", len(values))
		}
		amount0, ok0 := values[0].(*big.Int)
		amount1, ok1 := values[1].(*big.Int)
		if !ok0 || !ok1 {
			return nil, fmt.Errorf("mint: unexpected types %T/%T", values[0], values[1])
		}
		out = append(out, Mint{
			Pair:     log.Address,
			Sender:   indexed.Sender,
			Amount0:  amount0,
			Amount1:  amount1,
			LogIndex: log.Index,
		})
	}
	return out, nil
}

// Deposited reports the amounts a deposit receipt actually added, ordered by
// field. A pool without a known pair accepts the first Mint, which covers the
// pair created by the deposit itself.
func (d *Discovery) Deposited(receipt *types.Receipt, assets model.AssetPair, pool model.PoolState) (model.AmountPair, bool, error) {
	tokenA, err := router.TokenAddress(assets.A, d.chainID)
	if err != nil {
		return model.AmountPair{}, false, err
	}
	tokenB, err := router.TokenAddress(assets.B, d.chainID)
	if err != nil {
		return model.AmountPair{}, false, err
	}

	mints, err := DecodeMints(receipt.Logs)
	if err != nil {
		return model.AmountPair{}, false, err
	}
	for _, m := range mints {
		if pool.Pair != (common.Address{}) && m.Pair != pool.Pair {
			continue
		}
		// pairs sort their tokens by address
		if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) < 0 {
			return model.AmountPair{A: m.Amount0, B: m.Amount1}, true, nil
		}
		return model.AmountPair{A: m.Amount1, B: m.Amount0}, true, nil
	}
	return model.AmountPair{}, false, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
