package rpc

import (
	"github.com/tendermint/tendermint/libs/bytes"
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"highcourt/appeal"
	"highcourt/types"
)

type ResultAppeal struct {
	AppealID string `json:"appeal_id"`
	Subject  string `json:"subject"`
	State    string `json:"state"`
	// attestation挑战，只在ATTESTATION_PENDING阶段有意义
	Nonce   string `json:"nonce,omitempty"`
	CaseID  string `json:"case_id,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

func makeResultAppeal(a *appeal.Appeal) *ResultAppeal {
	result := &ResultAppeal{
		AppealID: a.ID,
		Subject:  string(a.Subject),
		State:    string(a.State),
		CaseID:   a.CaseID,
	}
	if a.State == appeal.StateAttestationPending {
		result.Nonce = a.Nonce
	}
	if a.Outcome != types.OutcomeNone {
		result.Outcome = a.Outcome.String()
	}
	return result
}

// OpenAppeal 为隔离节点开启申诉：登记、收押金、发放挑战nonce，一步完成
func OpenAppeal(ctx *rpctypes.Context, subject, depositRef string) (*ResultAppeal, error) {
	a, err := env.Appeals.Notify(types.NodeID(subject))
	if err != nil {
		return nil, err
	}
	a, err = env.Appeals.Submit(a.ID, depositRef)
	if err != nil {
		return nil, err
	}
	return makeResultAppeal(a), nil
}

func SubmitAttestation(ctx *rpctypes.Context, appealID string, quote bytes.HexBytes) (*ResultAppeal, error) {
	a, err := env.Appeals.SubmitAttestation(appealID, quote)
	if err != nil {
		return nil, err
	}
	return makeResultAppeal(a), nil
}
