package rpc

import (
	"time"

	"github.com/tendermint/tendermint/libs/bytes"
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"highcourt/types"
)

type ResultCreateDispute struct {
	CaseID   string    `json:"case_id"`
	Subject  string    `json:"subject"`
	Phase    string    `json:"phase"`
	Deadline time.Time `json:"deadline"`
	// 对外只暴露盲化handle，真实NodeID不出引擎
	Panel []string `json:"panel"`
}

func CreateDispute(ctx *rpctypes.Context, subject, evidenceRef string) (*ResultCreateDispute, error) {
	d, err := env.Disputes.CreateDispute(types.NodeID(subject), []byte(evidenceRef))
	if err != nil {
		return nil, err
	}

	assignment, err := env.Disputes.AssignmentOf(d.CaseID)
	if err != nil {
		return nil, err
	}

	return &ResultCreateDispute{
		CaseID:   d.CaseID,
		Subject:  string(d.Subject),
		Phase:    d.Phase.String(),
		Deadline: d.Deadline,
		Panel:    append([]string{}, assignment.Handles...),
	}, nil
}

type ResultSubmitVote struct {
	CaseID   string `json:"case_id"`
	Received int    `json:"received"`
}

func SubmitVote(ctx *rpctypes.Context, caseID, jurorID, verdict string, signature bytes.HexBytes) (*ResultSubmitVote, error) {
	v, err := types.VerdictFromString(verdict)
	if err != nil {
		return nil, err
	}
	if err := env.Disputes.SubmitVote(caseID, types.NodeID(jurorID), v, signature); err != nil {
		return nil, err
	}
	return &ResultSubmitVote{
		CaseID:   caseID,
		Received: env.Disputes.VoteCount(caseID),
	}, nil
}

type ResultDispute struct {
	CaseID      string         `json:"case_id"`
	Subject     string         `json:"subject"`
	Phase       string         `json:"phase"`
	Outcome     string         `json:"outcome"`
	Deadline    time.Time      `json:"deadline"`
	Received    int            `json:"received"`
	Panel       []string       `json:"panel"`
	Certificate bytes.HexBytes `json:"certificate,omitempty"`
}

func DisputeStatus(ctx *rpctypes.Context, caseID string) (*ResultDispute, error) {
	d, err := env.Disputes.GetDispute(caseID)
	if err != nil {
		return nil, err
	}

	result := &ResultDispute{
		CaseID:      d.CaseID,
		Subject:     string(d.Subject),
		Phase:       d.Phase.String(),
		Outcome:     d.Outcome.String(),
		Deadline:    d.Deadline,
		Received:    env.Disputes.VoteCount(caseID),
		Certificate: d.Certificate,
	}
	if assignment, err := env.Disputes.AssignmentOf(caseID); err == nil {
		result.Panel = append([]string{}, assignment.Handles...)
	}
	return result, nil
}
