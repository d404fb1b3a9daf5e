// Package chaintest serves a scriptable eth_* namespace over an in-process
// JSON-RPC server so chain-facing code runs against a real ethclient.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"liquiditySupply/internal/chain"
)

// ContractFunc answers eth_call and eth_estimateGas for one address.
type ContractFunc func(call CallArgs) ([]byte, error)

// CallArgs is the decoded call object of eth_call / eth_estimateGas.
type CallArgs struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// RPCError is an error carrying a JSON-RPC code across the in-process server.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string  { return e.Message }
func (e *RPCError) ErrorCode() int { return e.Code }

// Rejected mimics a wallet declining the request.
func Rejected() error {
	return &RPCError{Code: chain.UserRejectedCode, Message: "MetaMask Tx Signature: User denied transaction signature."}
}

// FakeEth is registered under the "eth" namespace; exported methods map to eth_* calls.
type FakeEth struct {
	mu sync.Mutex

	ChainIDValue  uint64
	BlockNumValue uint64
	BlockTime     uint64
	GasPriceValue *big.Int
	GasValue      uint64
	Balances      map[common.Address]*big.Int
	Contracts     map[common.Address]ContractFunc
	EstimateFunc  func(call CallArgs) (uint64, error)
	SendErr       error

	sent      []*types.Transaction
	estimates []CallArgs
	nonces    map[common.Address]uint64
}

// Dial starts an in-process server for fake and returns a connected client.
func Dial(t testing.TB, fake *FakeEth) *rpc.Client {
	t.Helper()
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", fake); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	c := rpc.DialInProc(srv)
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
	})
	return c
}

// NewClient wraps Dial in a chain.Client.
func NewClient(t testing.TB, fake *FakeEth) *chain.Client {
	t.Helper()
	return chain.Wrap(Dial(t, fake))
}

func (f *FakeEth) ChainId(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(new(big.Int).SetUint64(f.ChainIDValue)), nil
}

func (f *FakeEth) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	return hexutil.Uint64(f.BlockNumValue), nil
}

func (f *FakeEth) GetBlockByNumber(ctx context.Context, tag string, full bool) (map[string]interface{}, error) {
	number := f.BlockNumValue
	if tag != "latest" && tag != "pending" {
		n, err := hexutil.DecodeUint64(tag)
		if err != nil {
			return nil, err
		}
		if n > f.BlockNumValue {
			return nil, nil
		}
		number = n
	}
	return map[string]interface{}{
		"number":    hexutil.Uint64(number),
		"timestamp": hexutil.Uint64(f.BlockTime),
	}, nil
}

func (f *FakeEth) Call(ctx context.Context, args map[string]interface{}, block string) (hexutil.Bytes, error) {
	call, err := parseCallArgs(args)
	if err != nil {
		return nil, err
	}
	fn, ok := f.Contracts[call.To]
	if !ok {
		return hexutil.Bytes{}, nil
	}
	out, err := fn(call)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FakeEth) EstimateGas(ctx context.Context, args map[string]interface{}) (hexutil.Uint64, error) {
	call, err := parseCallArgs(args)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	f.estimates = append(f.estimates, call)
	f.mu.Unlock()

	if f.EstimateFunc != nil {
		gas, err := f.EstimateFunc(call)
		return hexutil.Uint64(gas), err
	}
	if f.GasValue == 0 {
		return hexutil.Uint64(21000), nil
	}
	return hexutil.Uint64(f.GasValue), nil
}

func (f *FakeEth) GetBalance(ctx context.Context, account common.Address, block string) (*hexutil.Big, error) {
	if bal, ok := f.Balances[account]; ok {
		return (*hexutil.Big)(bal), nil
	}
	return (*hexutil.Big)(new(big.Int)), nil
}

func (f *FakeEth) GetTransactionCount(ctx context.Context, account common.Address, block string) (hexutil.Uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hexutil.Uint64(f.nonces[account]), nil
}

func (f *FakeEth) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	if f.GasPriceValue == nil {
		return (*hexutil.Big)(big.NewInt(1_000_000_000)), nil
	}
	return (*hexutil.Big)(f.GasPriceValue), nil
}

func (f *FakeEth) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (common.Hash, error) {
	if f.SendErr != nil {
		return common.Hash{}, f.SendErr
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	signer := types.LatestSignerForChainID(tx.ChainId())
	from, err := types.Sender(signer, tx)
	if err != nil {
		return common.Hash{}, err
	}

	f.mu.Lock()
	if f.nonces == nil {
		f.nonces = make(map[common.Address]uint64)
	}
	f.nonces[from]++
	f.sent = append(f.sent, tx)
	f.mu.Unlock()
	return tx.Hash(), nil
}

// Sent returns the transactions accepted so far.
func (f *FakeEth) Sent() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*types.Transaction(nil), f.sent...)
}

// Estimates returns the call objects passed to eth_estimateGas.
func (f *FakeEth) Estimates() []CallArgs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CallArgs(nil), f.estimates...)
}

// ABIContract dispatches calls by selector to handlers keyed by method name.
func ABIContract(parsed abi.ABI, handlers map[string]func(args []interface{}) ([]interface{}, error)) ContractFunc {
	return func(call CallArgs) ([]byte, error) {
		if len(call.Data) < 4 {
			return nil, fmt.Errorf("short calldata")
		}
		method, err := parsed.MethodById(call.Data[:4])
		if err != nil {
			return nil, err
		}
		handler, ok := handlers[method.Name]
		if !ok {
			return nil, &RPCError{Code: 3, Message: "execution reverted"}
		}
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, err
		}
		out, err := handler(args)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(out...)
	}
}

func parseCallArgs(args map[string]interface{}) (CallArgs, error) {
	var call CallArgs
	if v, ok := args["from"].(string); ok {
		call.From = common.HexToAddress(v)
	}
	if v, ok := args["to"].(string); ok {
		call.To = common.HexToAddress(v)
	}

	input, ok := args["input"].(string)
	if !ok {
		input, _ = args["data"].(string)
	}
	if input != "" {
		data, err := hexutil.Decode(input)
		if err != nil {
			return CallArgs{}, fmt.Errorf("decode input: %w", err)
		}
		call.Data = data
	}

	if v, ok := args["value"].(string); ok {
		value, err := hexutil.DecodeBig(v)
		if err != nil {
			return CallArgs{}, fmt.Errorf("decode value: %w", err)
		}
		call.Value = value
	}
	return call, nil
}
