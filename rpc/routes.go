package rpc

import rpc "github.com/tendermint/tendermint/rpc/jsonrpc/server"

var Routes = map[string]*rpc.RPCFunc{
	"status": rpc.NewRPCFunc(Status, ""),

	"create_dispute": rpc.NewRPCFunc(CreateDispute, "subject,evidence_ref"),
	"submit_vote":    rpc.NewRPCFunc(SubmitVote, "case_id,juror_id,verdict,signature"),
	"dispute":        rpc.NewRPCFunc(DisputeStatus, "case_id"),

	"open_appeal":        rpc.NewRPCFunc(OpenAppeal, "subject,deposit_ref"),
	"submit_attestation": rpc.NewRPCFunc(SubmitAttestation, "appeal_id,quote"),

	"settlement": rpc.NewRPCFunc(Settlement, "case_id"),
	"metrics":    rpc.NewRPCFunc(JSONMetrics, "label"),
}
