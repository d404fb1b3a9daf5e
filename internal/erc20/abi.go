package erc20

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const tokenABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "owner", "type": "address"}], "name": "balanceOf", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "owner", "type": "address"}, {"name": "spender", "type": "address"}], "name": "allowance", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "spender", "type": "address"}, {"name": "amount", "type": "uint256"}], "name": "approve", "outputs": [{"type": "bool"}], "stateMutability": "nonpayable", "type": "function"}
]`

// Some early tokens (MKR, SAI) return bytes32 for symbol and name.
const tokenABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	tokenABI            abi.ABI
	tokenABIOnce        sync.Once
	tokenABIErr         error
	tokenABIBytes32     abi.ABI
	tokenABIBytes32Once sync.Once
	tokenABIBytes32Err  error
)

// ABI returns the parsed ERC20 ABI.
func ABI() (abi.ABI, error) {
	tokenABIOnce.Do(func() {
		tokenABI, tokenABIErr = abi.JSON(strings.NewReader(tokenABIJSON))
	})
	return tokenABI, tokenABIErr
}

// Bytes32ABI returns the legacy symbol/name ABI.
func Bytes32ABI() (abi.ABI, error) {
	tokenABIBytes32Once.Do(func() {
		tokenABIBytes32, tokenABIBytes32Err = abi.JSON(strings.NewReader(tokenABIBytes32JSON))
	})
	return tokenABIBytes32, tokenABIBytes32Err
}
