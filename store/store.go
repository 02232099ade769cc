package store

import (
	"highcourt/types"
)

// Store 持久化引擎的审计数据
// settlement记录一旦写入不可变，其他数据只追加或整体覆盖
type Store interface {
	// 候选人注册表
	SaveNode(node *types.Node) error
	LoadNodes() ([]*types.Node, error)

	// 抽签
	SaveEpoch(epoch *types.Epoch) error
	LoadEpoch(seq int64) (*types.Epoch, error)
	LatestEpochSeq() (int64, error)
	SaveAssignment(assignment *types.JurorAssignment) error
	LoadAssignment(id string) (*types.JurorAssignment, error)

	// 争议
	SaveDispute(dispute *types.Dispute) error
	LoadDispute(caseID string) (*types.Dispute, error)
	LoadOpenDisputes() ([]*types.Dispute, error)
	SaveVoteLog(caseID string, votes []*types.Vote) error
	LoadVoteLog(caseID string) ([]*types.Vote, error)

	// 清算
	SaveSettlement(record *types.SettlementRecord) error
	LoadSettlement(disputeID string) (*types.SettlementRecord, error)

	// NO_QUORUM案件进入人工复核队列
	PushEscalation(caseID string) error
	PendingEscalations() ([]string, error)
	PopEscalation(caseID string) error

	// payout异步重试索引
	MarkPayoutPending(disputeID string) error
	PendingPayouts() ([]string, error)
	ResolvePayout(disputeID string, ref string, status types.PayoutStatus) error

	Close() error
}
