package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrPending - rail暂时无法完成转账，settlement记录保持PAYOUT_PENDING
	ErrPending = errors.New("payment rail pending")
)

type InstructionKind uint8

const (
	KindBurn   = InstructionKind(1) // 罚没资金销毁
	KindPayout = InstructionKind(2) // 保险/奖励付款
)

func (k InstructionKind) String() string {
	switch k {
	case KindBurn:
		return "BURN"
	case KindPayout:
		return "PAYOUT"
	default:
		return "UnknownKind"
	}
}

// Instruction - 引擎只产出转账指令，真实的资金移动由外部rail执行
type Instruction struct {
	SettlementID string          `json:"settlement_id"`
	Kind         InstructionKind `json:"kind"`
	Amount       int64           `json:"amount"`
	Beneficiary  string          `json:"beneficiary,omitempty"`
}

func (in Instruction) String() string {
	return fmt.Sprintf("Instruction{%v %v %v}", in.SettlementID, in.Kind, in.Amount)
}

// Rail 支付通道的窄接口
type Rail interface {
	Pay(ctx context.Context, instruction Instruction) (txRef string, err error)
}

//----------------------------------------
// JournalRail

// JournalRail 本地记账rail，按序记录指令并立刻确认
// 真实L2通道接入前的默认实现
type JournalRail struct {
	mtx    sync.Mutex
	seq    int64
	ledger []Instruction
}

var _ Rail = (*JournalRail)(nil)

func NewJournalRail() *JournalRail {
	return &JournalRail{}
}

func (jr *JournalRail) Pay(ctx context.Context, instruction Instruction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	jr.mtx.Lock()
	defer jr.mtx.Unlock()

	jr.seq++
	jr.ledger = append(jr.ledger, instruction)
	return fmt.Sprintf("JOURNAL-%s-%06d", instruction.SettlementID, jr.seq), nil
}

// Ledger returns the instructions confirmed so far.
func (jr *JournalRail) Ledger() []Instruction {
	jr.mtx.Lock()
	defer jr.mtx.Unlock()
	out := make([]Instruction, len(jr.ledger))
	copy(out, jr.ledger)
	return out
}

//----------------------------------------
// MockRail

// MockRail implements Rail with scripted responses, for testing.
type MockRail struct {
	mtx sync.Mutex

	// FailuresBeforeSuccess次调用返回ErrPending，之后成功
	FailuresBeforeSuccess int

	calls []Instruction
}

var _ Rail = (*MockRail)(nil)

func NewMockRail() *MockRail {
	return &MockRail{}
}

func (mr *MockRail) Pay(ctx context.Context, instruction Instruction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mr.mtx.Lock()
	defer mr.mtx.Unlock()

	mr.calls = append(mr.calls, instruction)
	if mr.FailuresBeforeSuccess > 0 {
		mr.FailuresBeforeSuccess--
		return "", ErrPending
	}
	return fmt.Sprintf("TX-%s-%04d", instruction.SettlementID, len(mr.calls)), nil
}

// Calls returns every instruction the rail has seen.
func (mr *MockRail) Calls() []Instruction {
	mr.mtx.Lock()
	defer mr.mtx.Unlock()
	out := make([]Instruction, len(mr.calls))
	copy(out, mr.calls)
	return out
}
