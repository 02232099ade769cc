package dispute

import (
	"errors"
	"fmt"

	"highcourt/types"
)

var (
	ErrUnknownDispute = errors.New("unknown dispute")

	// ErrDuplicateVote - 同一juror的第二次提交，已有选票保持不变
	ErrDuplicateVote = errors.New("duplicate vote")

	ErrNotPanelMember = errors.New("juror is not on the dispute's panel")

	ErrInvalidSignature = errors.New("vote signature failed attestation")

	ErrUnknownSubject = errors.New("subject node is not registered")
)

// ErrWrongPhase - dispute不在可接受该操作的阶段
// FINALIZED之后的一切投票都落在这里
type ErrWrongPhase struct {
	Phase types.DisputePhase
}

func (e ErrWrongPhase) Error() string {
	return fmt.Sprintf("dispute in wrong phase: %v", e.Phase)
}
