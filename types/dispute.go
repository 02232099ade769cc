package types

import (
	"errors"
	"time"

	tmbytes "github.com/tendermint/tendermint/libs/bytes"
)

type DisputePhase uint8

const (
	DisputeOpen         = DisputePhase(1)
	DisputeDeliberating = DisputePhase(2)
	DisputeTallying     = DisputePhase(3)
	DisputeFinalized    = DisputePhase(4)
)

func (p DisputePhase) String() string {
	switch p {
	case DisputeOpen:
		return "OPEN"
	case DisputeDeliberating:
		return "DELIBERATING"
	case DisputeTallying:
		return "TALLYING"
	case DisputeFinalized:
		return "FINALIZED"
	default:
		return "UnknownPhase"
	}
}

// Dispute - 一个争议案件的全部状态
// Phase只会单向推进 OPEN → DELIBERATING → TALLYING → FINALIZED
// Outcome在FINALIZED之前始终为OutcomeNone
type Dispute struct {
	CaseID       string           `json:"case_id"`
	Subject      NodeID           `json:"subject"`
	AssignmentID string           `json:"assignment_id"`
	EvidenceRef  tmbytes.HexBytes `json:"evidence_ref"`

	Phase    DisputePhase `json:"phase"`
	OpenedAt time.Time    `json:"opened_at"`
	Deadline time.Time    `json:"deadline"`

	Outcome Outcome `json:"outcome"`
	// Certificate - 多数派选票的聚合签名，部分投票finalize时为空
	Certificate tmbytes.HexBytes `json:"certificate,omitempty"`
}

func (d *Dispute) ValidateBasic() error {
	if d == nil {
		return errors.New("nil dispute")
	}
	if d.CaseID == "" {
		return errors.New("dispute without case id")
	}
	if d.Subject == "" {
		return errors.New("dispute without subject node")
	}
	if d.AssignmentID == "" {
		return errors.New("dispute without juror assignment")
	}
	if d.Phase != DisputeFinalized && d.Outcome != OutcomeNone {
		return errors.New("outcome set before FINALIZED")
	}
	return nil
}

// Finalized returns whether the dispute reached its terminal phase.
func (d *Dispute) Finalized() bool {
	return d.Phase == DisputeFinalized
}

// Copy - 对外暴露dispute前先copy
func (d *Dispute) Copy() *Dispute {
	dCopy := *d
	return &dCopy
}
