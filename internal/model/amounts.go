package model

import "math/big"

// AmountPair maps each field to an exact base-unit amount. Nil means absent.
type AmountPair struct {
	A *big.Int
	B *big.Int
}

func (p AmountPair) Get(field Field) *big.Int {
	if field == FieldB {
		return p.B
	}
	return p.A
}

func (p *AmountPair) Set(field Field, amount *big.Int) {
	if field == FieldB {
		p.B = amount
		return
	}
	p.A = amount
}

// Complete reports whether both legs are present.
func (p AmountPair) Complete() bool {
	return p.A != nil && p.B != nil
}
