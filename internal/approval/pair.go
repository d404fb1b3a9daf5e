package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySupply/internal/model"
)

// InsufficientAllowanceError blocks the deposit until the field is approved.
type InsufficientAllowanceError struct {
	Field  model.Field
	Symbol string
	State  model.ApprovalState
}

func (e *InsufficientAllowanceError) Error() string {
	if e.State == model.ApprovalPending {
		return fmt.Sprintf("approving %s", e.Symbol)
	}
	return fmt.Sprintf("approve %s", e.Symbol)
}

// Pair holds one independent machine per field.
type Pair struct {
	mu       sync.RWMutex
	spender  common.Address
	machines [2]*Machine
	logger   *zap.Logger
}

func NewPair(assets model.AssetPair, spender common.Address, logger *zap.Logger) *Pair {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pair{spender: spender, logger: logger}
	for _, field := range model.Fields {
		p.machines[field] = NewMachine(assets.Get(field), spender, logger.With(zap.Stringer("field", field)))
	}
	return p
}

func (p *Pair) Machine(field model.Field) *Machine {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.machines[field]
}

// SetAsset starts a fresh machine for field; the other field is untouched.
func (p *Pair) SetAsset(field model.Field, asset model.Asset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.machines[field] = NewMachine(asset, p.spender, p.logger.With(zap.Stringer("field", field)))
}

func (p *Pair) States() [2]model.ApprovalState {
	var out [2]model.ApprovalState
	for _, field := range model.Fields {
		out[field] = p.Machine(field).State()
	}
	return out
}

// Refresh refreshes both machines against the current amounts.
func (p *Pair) Refresh(ctx context.Context, reader AllowanceReader, owner common.Address, amounts model.AmountPair) error {
	var errs []error
	for _, field := range model.Fields {
		if _, err := p.Machine(field).Refresh(ctx, reader, owner, amounts.Get(field)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Require re-evaluates both machines against new amounts.
func (p *Pair) Require(amounts model.AmountPair) {
	for _, field := range model.Fields {
		p.Machine(field).Require(amounts.Get(field))
	}
}

// Gate returns the reason the deposit is disabled, or nil.
func (p *Pair) Gate(validationErr error) error {
	if validationErr != nil {
		return validationErr
	}
	for _, field := range model.Fields {
		m := p.Machine(field)
		if state := m.State(); state != model.ApprovalApproved {
			return &InsufficientAllowanceError{Field: field, Symbol: m.Asset().String(), State: state}
		}
	}
	return nil
}
