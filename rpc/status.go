package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

type ResultStatus struct {
	EpochSeq      int64  `json:"epoch_seq"`
	AssignmentID  string `json:"assignment_id"`
	PanelSize     int    `json:"panel_size"`
	EligibleNodes int    `json:"eligible_nodes"`
}

func Status(ctx *rpctypes.Context) (*ResultStatus, error) {
	result := &ResultStatus{
		EpochSeq:      env.Epochs.CurrentSeq(),
		EligibleNodes: len(env.Registry.SnapshotEligiblePool()),
	}
	if assignment, err := env.Epochs.LatestAssignment(); err == nil {
		result.AssignmentID = assignment.ID
		result.PanelSize = assignment.PanelSize()
	}
	return result, nil
}
