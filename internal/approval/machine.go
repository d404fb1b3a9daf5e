package approval

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySupply/internal/chain"
	"liquiditySupply/internal/model"
)

var ErrNotApprovable = errors.New("approval not needed in current state")

// AllowanceReader reads a token allowance.
type AllowanceReader interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// Approver submits an approval for at least amount.
type Approver interface {
	SubmitApproval(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error)
}

// Machine tracks the router allowance of one asset.
type Machine struct {
	mu        sync.Mutex
	asset     model.Asset
	spender   common.Address
	state     model.ApprovalState
	required  *big.Int
	allowance *big.Int
	pending   common.Hash
	logger    *zap.Logger
}

func NewMachine(asset model.Asset, spender common.Address, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Machine{asset: asset, spender: spender, logger: logger}
	if asset.Native {
		m.state = model.ApprovalApproved
	}
	return m
}

func (m *Machine) Asset() model.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.asset
}

func (m *Machine) State() model.ApprovalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// PendingHash returns the approval transaction awaiting confirmation.
func (m *Machine) PendingHash() common.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Refresh compares the on-chain allowance with required. A pending approval
// only resolves once the allowance covers the amount.
func (m *Machine) Refresh(ctx context.Context, reader AllowanceReader, owner common.Address, required *big.Int) (model.ApprovalState, error) {
	m.mu.Lock()
	asset := m.asset
	if asset.Native {
		m.state = model.ApprovalApproved
		m.mu.Unlock()
		return model.ApprovalApproved, nil
	}
	m.required = copyInt(required)
	if required == nil {
		if m.state != model.ApprovalPending {
			m.state = model.ApprovalUnknown
		}
		state := m.state
		m.mu.Unlock()
		return state, nil
	}
	m.mu.Unlock()

	allowance, err := reader.Allowance(ctx, asset.Address, owner, m.spender)
	if err != nil {
		return m.State(), fmt.Errorf("read allowance %s: %w", asset, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.asset.Equal(asset) {
		return m.state, nil
	}
	m.allowance = allowance
	covered := m.required == nil || allowance.Cmp(m.required) >= 0
	switch {
	case covered && m.required != nil:
		m.state = model.ApprovalApproved
		m.pending = common.Hash{}
	case m.state == model.ApprovalPending:
		// waits for the allowance to cover the amount
	case m.required == nil:
		m.state = model.ApprovalUnknown
	default:
		m.state = model.ApprovalNotApproved
	}
	return m.state, nil
}

// Require re-evaluates the last read allowance against a new required
// amount without touching the chain. A pending approval stays pending.
func (m *Machine) Require(required *big.Int) model.ApprovalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.asset.Native {
		m.state = model.ApprovalApproved
		return m.state
	}
	m.required = copyInt(required)
	if m.state == model.ApprovalPending {
		return m.state
	}
	switch {
	case m.required == nil || m.allowance == nil:
		m.state = model.ApprovalUnknown
	case m.allowance.Cmp(m.required) >= 0:
		m.state = model.ApprovalApproved
	default:
		m.state = model.ApprovalNotApproved
	}
	return m.state
}

// Approve submits an approval. The machine is Pending from the moment the
// request is made; a declined wallet prompt returns it to NotApproved without
// an error, any other failure is returned.
func (m *Machine) Approve(ctx context.Context, approver Approver) (common.Hash, error) {
	m.mu.Lock()
	if m.state != model.ApprovalNotApproved || m.required == nil {
		state, asset := m.state, m.asset
		m.mu.Unlock()
		m.logger.Warn("approve called unnecessarily", zap.String("asset", asset.String()), zap.Stringer("state", state))
		return common.Hash{}, ErrNotApprovable
	}
	m.state = model.ApprovalPending
	asset, required := m.asset, copyInt(m.required)
	m.mu.Unlock()

	hash, err := approver.SubmitApproval(ctx, asset.Address, m.spender, required)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = model.ApprovalNotApproved
		if chain.IsUserRejected(err) {
			m.logger.Debug("approval rejected by user", zap.String("asset", asset.String()))
			return common.Hash{}, nil
		}
		m.logger.Error("failed to approve token", zap.String("asset", asset.String()), zap.Error(err))
		return common.Hash{}, fmt.Errorf("approve %s: %w", asset, err)
	}
	m.pending = hash
	return hash, nil
}

// Confirm resolves a pending approval once its transaction is mined.
func (m *Machine) Confirm(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.ApprovalPending {
		return
	}
	m.pending = common.Hash{}
	if success {
		m.state = model.ApprovalApproved
		if m.required != nil && (m.allowance == nil || m.allowance.Cmp(m.required) < 0) {
			m.allowance = copyInt(m.required)
		}
		return
	}
	m.state = model.ApprovalNotApproved
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
