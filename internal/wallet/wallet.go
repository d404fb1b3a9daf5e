package wallet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"

	"liquiditySupply/internal/chain"
)

var ErrNoWallet = errors.New("no wallet configured: set private-key")

// Connector yields the active account, prompting a connection when needed.
type Connector interface {
	RequestConnection(ctx context.Context) (common.Address, error)
}

// Sender is the signing surface a wallet exposes.
type Sender interface {
	EstimateGas(ctx context.Context, to common.Address, data []byte, value *big.Int) (uint64, error)
	Send(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (common.Hash, error)
}

// KeyWallet is a wallet backed by a local key. A nil transactor means no key was configured.
type KeyWallet struct {
	tx *chain.Transactor
}

func NewKeyWallet(tx *chain.Transactor) *KeyWallet {
	return &KeyWallet{tx: tx}
}

func (w *KeyWallet) RequestConnection(context.Context) (common.Address, error) {
	if w.tx == nil {
		return common.Address{}, ErrNoWallet
	}
	return w.tx.From(), nil
}

func (w *KeyWallet) EstimateGas(ctx context.Context, to common.Address, data []byte, value *big.Int) (uint64, error) {
	if w.tx == nil {
		return 0, ErrNoWallet
	}
	return w.tx.EstimateGas(ctx, to, data, value)
}

func (w *KeyWallet) Send(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (common.Hash, error) {
	if w.tx == nil {
		return common.Hash{}, ErrNoWallet
	}
	return w.tx.Send(ctx, to, data, value, gas)
}

// Describer renders a pending transaction for the confirmation prompt.
type Describer func(to common.Address, data []byte, value *big.Int, gas uint64) string

// Prompt asks the user before every Send, like a wallet popup. Declining returns
// a user rejection error. AutoConfirm skips the question.
type Prompt struct {
	next        Sender
	in          *bufio.Reader
	out         io.Writer
	describe    Describer
	AutoConfirm bool

	mu sync.Mutex
}

func NewPrompt(next Sender, in io.Reader, out io.Writer, describe Describer) *Prompt {
	return &Prompt{next: next, in: bufio.NewReader(in), out: out, describe: describe}
}

func (p *Prompt) EstimateGas(ctx context.Context, to common.Address, data []byte, value *big.Int) (uint64, error) {
	return p.next.EstimateGas(ctx, to, data, value)
}

func (p *Prompt) Send(ctx context.Context, to common.Address, data []byte, value *big.Int, gas uint64) (common.Hash, error) {
	if !p.AutoConfirm {
		ok, err := p.confirm(to, data, value, gas)
		if err != nil {
			return common.Hash{}, err
		}
		if !ok {
			return common.Hash{}, &chain.UserRejectedError{Reason: "declined at prompt"}
		}
	}
	return p.next.Send(ctx, to, data, value, gas)
}

func (p *Prompt) confirm(to common.Address, data []byte, value *big.Int, gas uint64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.describe != nil {
		fmt.Fprintln(p.out, p.describe(to, data, value, gas))
	}
	fmt.Fprint(p.out, color.YellowString("Sign and send? [y/N]: "))
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
