package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"highcourt/types"
)

type ResultSettlement struct {
	Record *types.SettlementRecord `json:"record"`
}

func Settlement(ctx *rpctypes.Context, caseID string) (*ResultSettlement, error) {
	record, err := env.Store.LoadSettlement(caseID)
	if err != nil {
		return nil, err
	}
	return &ResultSettlement{Record: record}, nil
}
