package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// Asset is either the chain's native coin or an ERC20 token.
type Asset struct {
	Native   bool           `json:"native"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
}

// NativeAsset returns the native coin of an EVM chain (always 18 decimals).
func NativeAsset(symbol, name string) Asset {
	return Asset{Native: true, Decimals: 18, Symbol: symbol, Name: name}
}

// IsZero reports whether the slot has no asset selected.
func (a Asset) IsZero() bool {
	return !a.Native && a.Address == (common.Address{})
}

// Equal compares assets by identity, ignoring metadata.
func (a Asset) Equal(other Asset) bool {
	if a.Native || other.Native {
		return a.Native == other.Native
	}
	return a.Address == other.Address
}

func (a Asset) String() string {
	if a.Symbol != "" {
		return a.Symbol
	}
	if a.Native {
		return "native"
	}
	return a.Address.Hex()
}

// AssetPair holds the assets selected for slots A and B.
type AssetPair struct {
	A Asset `json:"a"`
	B Asset `json:"b"`
}

func (p AssetPair) Get(field Field) Asset {
	if field == FieldB {
		return p.B
	}
	return p.A
}

func (p *AssetPair) Set(field Field, asset Asset) {
	if field == FieldB {
		p.B = asset
		return
	}
	p.A = asset
}

// Label renders the pair as "A/B".
func (p AssetPair) Label() string {
	return p.A.String() + "/" + p.B.String()
}
