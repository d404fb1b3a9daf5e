package erc20

import (
	"context"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"liquiditySupply/internal/chain/chaintest"
)

type countingCaller struct {
	next  Caller
	calls atomic.Int32
}

func (c *countingCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	c.calls.Add(1)
	return c.next.CallContract(ctx, msg, block)
}

func TestAssetCacheFetchesOnce(t *testing.T) {
	fake := &chaintest.FakeEth{ChainIDValue: 1, Contracts: map[common.Address]chaintest.ContractFunc{token: tokenContract(t)}}
	caller := &countingCaller{next: chaintest.NewClient(t, fake)}
	cache := NewAssetCache(caller, nil)
	ctx := context.Background()

	first, err := cache.Resolve(ctx, token)
	require.NoError(t, err)
	calls := caller.calls.Load()
	require.Equal(t, int32(3), calls)

	second, err := cache.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, calls, caller.calls.Load())

	_, ok := cache.Get(common.HexToAddress("0x01"))
	require.False(t, ok)
}
