package router

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquiditySupply/internal/model"
)

// UnsupportedAssetError is returned for chains without a known wrapped native token.
type UnsupportedAssetError struct {
	ChainID *big.Int
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("no wrapped native token known for chain %s", e.ChainID)
}

var wrappedNative = map[int64]common.Address{
	1:        common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), // WETH
	10:       common.HexToAddress("0x4200000000000000000000000000000000000006"), // WETH
	56:       common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"), // WBNB
	137:      common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"), // WMATIC
	8453:     common.HexToAddress("0x4200000000000000000000000000000000000006"), // WETH
	42161:    common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"), // WETH
	43114:    common.HexToAddress("0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7"), // WAVAX
	11155111: common.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"), // WETH
}

// WrappedNative returns the canonical wrapped native token of a chain.
func WrappedNative(chainID *big.Int) (common.Address, error) {
	if chainID == nil || !chainID.IsInt64() {
		return common.Address{}, &UnsupportedAssetError{ChainID: chainID}
	}
	addr, ok := wrappedNative[chainID.Int64()]
	if !ok {
		return common.Address{}, &UnsupportedAssetError{ChainID: chainID}
	}
	return addr, nil
}

// TokenAddress returns the address an asset trades under in pool math.
func TokenAddress(asset model.Asset, chainID *big.Int) (common.Address, error) {
	if asset.Native {
		return WrappedNative(chainID)
	}
	return asset.Address, nil
}
