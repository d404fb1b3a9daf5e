package approval

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"liquiditySupply/internal/chain"
	"liquiditySupply/internal/model"
)

var (
	router = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	owner  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tokenA = model.Asset{Address: common.HexToAddress("0x00000000000000000000000000000000000000aa"), Decimals: 18, Symbol: "AAA"}
	tokenB = model.Asset{Address: common.HexToAddress("0x00000000000000000000000000000000000000bb"), Decimals: 18, Symbol: "BBB"}
)

type allowances struct {
	mu     sync.Mutex
	values map[common.Address]*big.Int
}

func (a *allowances) set(token common.Address, v int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.values == nil {
		a.values = make(map[common.Address]*big.Int)
	}
	a.values[token] = big.NewInt(v)
}

func (a *allowances) Allowance(_ context.Context, token, _, _ common.Address) (*big.Int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v, ok := a.values[token]; ok {
		return v, nil
	}
	return big.NewInt(0), nil
}

type approverFunc func(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error)

func (f approverFunc) SubmitApproval(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	return f(ctx, token, spender, amount)
}

func okApprover(hash string) Approver {
	return approverFunc(func(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error) {
		return common.HexToHash(hash), nil
	})
}

func TestNativeAssetIsApproved(t *testing.T) {
	m := NewMachine(model.NativeAsset("ETH", "Ether"), router, nil)
	if m.State() != model.ApprovalApproved {
		t.Fatalf("native asset must start approved, got %s", m.State())
	}
	state, err := m.Refresh(context.Background(), &allowances{}, owner, big.NewInt(10))
	if err != nil || state != model.ApprovalApproved {
		t.Fatalf("native asset must stay approved: %s %v", state, err)
	}
}

func TestRefreshComparesAllowance(t *testing.T) {
	reader := &allowances{}
	reader.set(tokenA.Address, 100)
	m := NewMachine(tokenA, router, nil)
	ctx := context.Background()

	if m.State() != model.ApprovalUnknown {
		t.Fatalf("expected unknown initial state")
	}
	if state, _ := m.Refresh(ctx, reader, owner, big.NewInt(101)); state != model.ApprovalNotApproved {
		t.Fatalf("expected not approved, got %s", state)
	}
	if state, _ := m.Refresh(ctx, reader, owner, big.NewInt(100)); state != model.ApprovalApproved {
		t.Fatalf("expected approved, got %s", state)
	}
	if state, _ := m.Refresh(ctx, reader, owner, nil); state != model.ApprovalUnknown {
		t.Fatalf("expected unknown for absent amount, got %s", state)
	}
}

func TestApproveLifecycle(t *testing.T) {
	reader := &allowances{}
	m := NewMachine(tokenA, router, nil)
	ctx := context.Background()
	m.Refresh(ctx, reader, owner, big.NewInt(10))

	hash, err := m.Approve(ctx, okApprover("0x01"))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if hash != common.HexToHash("0x01") || m.State() != model.ApprovalPending {
		t.Fatalf("expected pending with hash, got %s %s", m.State(), hash.Hex())
	}

	if state, _ := m.Refresh(ctx, reader, owner, big.NewInt(10)); state != model.ApprovalPending {
		t.Fatalf("pending must hold while allowance is short, got %s", state)
	}
	if _, err := m.Approve(ctx, okApprover("0x02")); !errors.Is(err, ErrNotApprovable) {
		t.Fatalf("second approve while pending must be refused, got %v", err)
	}

	m.Confirm(true)
	if m.State() != model.ApprovalApproved || m.PendingHash() != (common.Hash{}) {
		t.Fatalf("expected approved after confirmation, got %s", m.State())
	}
}

func TestPendingResolvesFromAllowance(t *testing.T) {
	reader := &allowances{}
	m := NewMachine(tokenA, router, nil)
	ctx := context.Background()
	m.Refresh(ctx, reader, owner, big.NewInt(10))
	m.Approve(ctx, okApprover("0x01"))

	reader.set(tokenA.Address, 10)
	if state, _ := m.Refresh(ctx, reader, owner, big.NewInt(10)); state != model.ApprovalApproved {
		t.Fatalf("expected approved once allowance covers amount, got %s", state)
	}
}

func TestConfirmFailure(t *testing.T) {
	m := NewMachine(tokenA, router, nil)
	m.Refresh(context.Background(), &allowances{}, owner, big.NewInt(10))
	m.Approve(context.Background(), okApprover("0x01"))
	m.Confirm(false)
	if m.State() != model.ApprovalNotApproved {
		t.Fatalf("expected not approved after failed approval, got %s", m.State())
	}
}

func TestApproveRejectedByUser(t *testing.T) {
	m := NewMachine(tokenA, router, nil)
	m.Refresh(context.Background(), &allowances{}, owner, big.NewInt(10))

	rejecting := approverFunc(func(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error) {
		return common.Hash{}, &chain.UserRejectedError{}
	})
	if _, err := m.Approve(context.Background(), rejecting); err != nil {
		t.Fatalf("rejection must not surface, got %v", err)
	}
	if m.State() != model.ApprovalNotApproved {
		t.Fatalf("expected not approved after rejection, got %s", m.State())
	}
}

func TestApproveFailureSurfaces(t *testing.T) {
	m := NewMachine(tokenA, router, nil)
	m.Refresh(context.Background(), &allowances{}, owner, big.NewInt(10))

	boom := errors.New("insufficient funds for gas")
	failing := approverFunc(func(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error) {
		return common.Hash{}, boom
	})
	if _, err := m.Approve(context.Background(), failing); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if m.State() != model.ApprovalNotApproved {
		t.Fatalf("expected not approved after failure, got %s", m.State())
	}
}

func TestApprovalsAreIndependent(t *testing.T) {
	pair := NewPair(model.AssetPair{A: tokenA, B: tokenB}, router, nil)
	ctx := context.Background()
	if err := pair.Refresh(ctx, &allowances{}, owner, model.AmountPair{A: big.NewInt(5), B: big.NewInt(7)}); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	entered := make(chan common.Address, 2)
	release := make(chan struct{})
	blocking := approverFunc(func(_ context.Context, token, _ common.Address, _ *big.Int) (common.Hash, error) {
		entered <- token
		<-release
		return common.BytesToHash(token.Bytes()), nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pair.Machine(model.FieldA).Approve(ctx, blocking)
	}()
	<-entered

	states := pair.States()
	if states[model.FieldA] != model.ApprovalPending || states[model.FieldB] != model.ApprovalNotApproved {
		t.Fatalf("A pending must not touch B: %v", states)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		pair.Machine(model.FieldB).Approve(ctx, blocking)
	}()
	<-entered
	states = pair.States()
	if states[model.FieldA] != model.ApprovalPending || states[model.FieldB] != model.ApprovalPending {
		t.Fatalf("both approvals must be able to be pending: %v", states)
	}

	close(release)
	wg.Wait()

	pair.Machine(model.FieldB).Confirm(true)
	states = pair.States()
	if states[model.FieldA] != model.ApprovalPending || states[model.FieldB] != model.ApprovalApproved {
		t.Fatalf("confirming B must not touch A: %v", states)
	}
}

func TestGate(t *testing.T) {
	pair := NewPair(model.AssetPair{A: model.NativeAsset("ETH", "Ether"), B: tokenB}, router, nil)
	reader := &allowances{}
	ctx := context.Background()
	pair.Refresh(ctx, reader, owner, model.AmountPair{A: big.NewInt(1), B: big.NewInt(7)})

	validation := errors.New("insufficient BBB balance")
	if err := pair.Gate(validation); err != validation {
		t.Fatalf("validation error must win, got %v", err)
	}

	var allowanceErr *InsufficientAllowanceError
	if err := pair.Gate(nil); !errors.As(err, &allowanceErr) || allowanceErr.Field != model.FieldB {
		t.Fatalf("expected allowance error for B, got %v", err)
	}
	if allowanceErr.Error() != "approve BBB" {
		t.Fatalf("unexpected message %q", allowanceErr.Error())
	}

	reader.set(tokenB.Address, 7)
	pair.Refresh(ctx, reader, owner, model.AmountPair{A: big.NewInt(1), B: big.NewInt(7)})
	if err := pair.Gate(nil); err != nil {
		t.Fatalf("expected open gate, got %v", err)
	}

	pair.SetAsset(model.FieldB, tokenA)
	if pair.Machine(model.FieldB).State() != model.ApprovalUnknown {
		t.Fatalf("new asset must start unknown")
	}
	if pair.Machine(model.FieldA).State() != model.ApprovalApproved {
		t.Fatalf("native field must stay approved")
	}
}

func TestRequireUsesLastAllowance(t *testing.T) {
	reader := &allowances{}
	reader.set(tokenA.Address, 10)
	m := NewMachine(tokenA, router, nil)
	ctx := context.Background()

	if state := m.Require(big.NewInt(5)); state != model.ApprovalUnknown {
		t.Fatalf("no allowance read yet, expected unknown, got %s", state)
	}
	if state, _ := m.Refresh(ctx, reader, owner, big.NewInt(10)); state != model.ApprovalApproved {
		t.Fatalf("expected approved, got %s", state)
	}
	if state := m.Require(big.NewInt(11)); state != model.ApprovalNotApproved {
		t.Fatalf("raised amount must need approval, got %s", state)
	}
	if state := m.Require(big.NewInt(3)); state != model.ApprovalApproved {
		t.Fatalf("lowered amount is covered, got %s", state)
	}
	if state := m.Require(nil); state != model.ApprovalUnknown {
		t.Fatalf("cleared amount must be unknown, got %s", state)
	}

	m.Require(big.NewInt(50))
	m.Approve(ctx, okApprover("0x01"))
	if state := m.Require(big.NewInt(60)); state != model.ApprovalPending {
		t.Fatalf("pending must survive amount changes, got %s", state)
	}
	m.Confirm(true)
	if state := m.Require(big.NewInt(60)); state != model.ApprovalApproved {
		t.Fatalf("confirmed approval covers the amount it was sent for, got %s", state)
	}
	if state := m.Require(big.NewInt(61)); state != model.ApprovalNotApproved {
		t.Fatalf("amount above the confirmed approval, got %s", state)
	}

	native := NewMachine(model.NativeAsset("ETH", "Ether"), router, nil)
	if state := native.Require(big.NewInt(1)); state != model.ApprovalApproved {
		t.Fatalf("native is always approved, got %s", state)
	}
}
