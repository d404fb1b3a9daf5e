package erc20

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySupply/internal/model"
)

// Caller is the eth_call surface the token reads need.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

func callMethod(ctx context.Context, caller Caller, token common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &token, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

// Allowance returns how much spender may move from owner.
func Allowance(ctx context.Context, caller Caller, token, owner, spender common.Address) (*big.Int, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, parsed, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// BalanceOf returns the token balance of owner.
func BalanceOf(ctx context.Context, caller Caller, token, owner common.Address) (*big.Int, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, parsed, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// ApproveData packs approve(spender, amount).
func ApproveData(spender common.Address, amount *big.Int) ([]byte, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return parsed.Pack("approve", spender, amount)
}

// FetchAsset loads token metadata via ERC20 calls. Decimals are required;
// symbol and name fall back to the bytes32 variants and are otherwise left empty.
func FetchAsset(ctx context.Context, caller Caller, token common.Address, logger *zap.Logger) (model.Asset, error) {
	asset := model.Asset{Address: token}
	if caller == nil {
		return asset, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := ABI()
	if err != nil {
		return asset, fmt.Errorf("parse erc20 abi: %w", err)
	}
	legacy, err := Bytes32ABI()
	if err != nil {
		return asset, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := callMethod(ctx, caller, token, parsed, "decimals")
	if err != nil {
		return asset, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return asset, err
	}
	asset.Decimals = decimals

	if values, err := callMethod(ctx, caller, token, parsed, "symbol"); err == nil {
		if symbol, ok := values[0].(string); ok {
			asset.Symbol = symbol
		}
	} else if values, err := callMethod(ctx, caller, token, legacy, "symbol"); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			asset.Symbol = symbol
		}
	} else {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callMethod(ctx, caller, token, parsed, "name"); err == nil {
		if name, ok := values[0].(string); ok {
			asset.Name = name
		}
	} else if values, err := callMethod(ctx, caller, token, legacy, "name"); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			asset.Name = name
		}
	} else {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return asset, nil
}

// Reader binds the token reads to one RPC caller.
type Reader struct {
	caller Caller
}

func NewReader(caller Caller) *Reader {
	return &Reader{caller: caller}
}

func (r *Reader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return Allowance(ctx, r.caller, token, owner, spender)
}

func (r *Reader) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return BalanceOf(ctx, r.caller, token, owner)
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("decimals out of range: %s", v)
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
