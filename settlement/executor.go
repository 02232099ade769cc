package settlement

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"

	"highcourt/config"
	"highcourt/libs/metric"
	"highcourt/payment"
	"highcourt/store"
	"highcourt/tally"
	"highcourt/types"
)

// Ledger - executor对注册表的最小依赖
// 声誉/bond的截断逻辑在registry内，executor只提交delta
type Ledger interface {
	Get(id types.NodeID) (*types.Node, error)
	ApplyDeltas(id types.NodeID, repDelta, bondDelta int64) error
	SetStatus(id types.NodeID, status types.NodeStatus) error
}

// Executor 将verdict翻译成经济清算
// 所有delta只计算一次；对已finalize的dispute重放Settle是严格的no-op
type Executor struct {
	config *config.SettlementConfig
	ledger Ledger
	store  store.Store
	rail   payment.Rail

	metric *settlementMetric
	logger log.Logger
}

func NewExecutor(cfg *config.SettlementConfig, ledger Ledger, st store.Store, rail payment.Rail, logger log.Logger) *Executor {
	return &Executor{
		config: cfg,
		ledger: ledger,
		store:  st,
		rail:   rail,
		metric: newSettlementMetric(),
		logger: logger,
	}
}

// Metric exposes the settlement metric item.
func (ex *Executor) Metric() metric.MetricItem {
	return ex.metric
}

// Settle applies the economic consequences of a finalized dispute.
//
// 顺序：subject声誉 → subject bond → 未投票惩罚/少数派罚没 → payout指令。
// 已存在记录时直接返回存盘内容，不重复应用任何delta。
func (ex *Executor) Settle(dispute *types.Dispute, assignment *types.JurorAssignment, result tally.Result) (*types.SettlementRecord, error) {
	if !dispute.Finalized() {
		return nil, ErrNotFinalized
	}
	if dispute.Outcome == types.OutcomeNoQuorum {
		return nil, ErrNoQuorumOutcome
	}

	// 幂等：有记录就是已经清算过
	if existing, err := ex.store.LoadSettlement(dispute.CaseID); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	record, err := ex.computeRecord(dispute, assignment, result)
	if err != nil {
		return nil, err
	}

	if err := ex.applyDeltas(dispute, record); err != nil {
		return nil, err
	}

	// 资金移动委托给外部rail；失败不阻塞finality，转异步重试
	ex.executePayout(record)

	if err := ex.store.SaveSettlement(record); err != nil {
		return nil, err
	}
	if record.PayoutStatus == types.PayoutPending {
		if err := ex.store.MarkPayoutPending(record.DisputeID); err != nil {
			return nil, err
		}
	}

	ex.metric.MarkSettled(record.TreasuryBurn)
	ex.logger.Info("dispute settled",
		"case", dispute.CaseID,
		"outcome", record.Outcome,
		"subject_bond_delta", record.SubjectBondDelta,
		"treasury_burn", record.TreasuryBurn,
		"payout", record.PayoutStatus)
	return record, nil
}

// computeRecord 只计算，不产生副作用
func (ex *Executor) computeRecord(dispute *types.Dispute, assignment *types.JurorAssignment, result tally.Result) (*types.SettlementRecord, error) {
	record := &types.SettlementRecord{
		DisputeID: dispute.CaseID,
		Outcome:   dispute.Outcome,
		CreatedAt: dispute.Deadline, // 取确定性时间，重算可复现
	}

	subject, err := ex.ledger.Get(dispute.Subject)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "subject %v", dispute.Subject)
	}

	slashPool := int64(0)
	if dispute.Outcome.Adverse() {
		record.SubjectRepDelta = -ex.config.SubjectRepPenalty
		record.SubjectBondDelta = -(subject.Bond * ex.config.SlashRateBps / 10_000)
		slashPool += -record.SubjectBondDelta
	} else {
		record.SubjectRepDelta = ex.config.SubjectRepReward
	}

	voted := make(map[types.NodeID]*types.Vote, len(result.Majority)+len(result.Minority))
	for _, v := range result.Majority {
		voted[v.JurorID] = v
	}
	minority := make(map[types.NodeID]bool, len(result.Minority))
	for _, v := range result.Minority {
		voted[v.JurorID] = v
		minority[v.JurorID] = true
	}

	var majorityIDs []types.NodeID
	for _, jurorID := range assignment.Jurors {
		switch {
		case voted[jurorID] == nil:
			// 逾期未响应：固定声誉惩罚
			record.JurorDeltas = append(record.JurorDeltas, types.JurorDelta{
				JurorID:  jurorID,
				RepDelta: -ex.config.NonResponsePenalty,
				Reason:   "no_response",
			})
		case minority[jurorID]:
			juror, err := ex.ledger.Get(jurorID)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "juror %v", jurorID)
			}
			slash := juror.Bond * ex.config.DissentSlashBps / 10_000
			slashPool += slash
			record.JurorDeltas = append(record.JurorDeltas, types.JurorDelta{
				JurorID:   jurorID,
				BondDelta: -slash,
				Reason:    "dissent",
			})
		default:
			majorityIDs = append(majorityIDs, jurorID)
		}
	}

	// 多数派瓜分罚没池的配置份额，剩余记为treasury burn
	if len(majorityIDs) > 0 && slashPool > 0 {
		reward := slashPool * ex.config.SlashRewardBps / 10_000 / int64(len(majorityIDs))
		for _, jurorID := range majorityIDs {
			record.JurorDeltas = append(record.JurorDeltas, types.JurorDelta{
				JurorID:   jurorID,
				BondDelta: reward,
				Reason:    "majority_reward",
			})
			slashPool -= reward
		}
	}
	record.TreasuryBurn = slashPool

	return record, nil
}

func (ex *Executor) applyDeltas(dispute *types.Dispute, record *types.SettlementRecord) error {
	if err := ex.ledger.ApplyDeltas(dispute.Subject, record.SubjectRepDelta, record.SubjectBondDelta); err != nil {
		return err
	}

	status := types.NodeActive
	if record.Outcome.Adverse() {
		status = types.NodeBanned
	}
	if err := ex.ledger.SetStatus(dispute.Subject, status); err != nil {
		return err
	}

	for _, jd := range record.JurorDeltas {
		if err := ex.ledger.ApplyDeltas(jd.JurorID, jd.RepDelta, jd.BondDelta); err != nil {
			return err
		}
	}
	return nil
}

// executePayout 发起资金指令，带超时和退避重试
// 最终仍失败时降级为PAYOUT_PENDING，由retry loop接手
func (ex *Executor) executePayout(record *types.SettlementRecord) {
	if record.TreasuryBurn <= 0 {
		record.PayoutStatus = types.PayoutNone
		return
	}

	ref, err := ex.payWithRetry(payment.Instruction{
		SettlementID: record.DisputeID,
		Kind:         payment.KindBurn,
		Amount:       record.TreasuryBurn,
	})
	if err != nil {
		ex.logger.Error("payout deferred", "case", record.DisputeID, "err", err)
		record.PayoutStatus = types.PayoutPending
		return
	}
	record.PayoutRef = ref
	record.PayoutStatus = types.PayoutSettled
}

func (ex *Executor) payWithRetry(instruction payment.Instruction) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= ex.config.PayoutRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(ex.config.PayoutBackoff * time.Duration(attempt))
		}

		ctx, cancel := context.WithTimeout(context.Background(), ex.config.PayoutTimeout)
		ref, err := ex.rail.Pay(ctx, instruction)
		cancel()
		if err == nil {
			return ref, nil
		}
		lastErr = err
	}
	return "", pkgerrors.Wrap(lastErr, "payment rail exhausted retries")
}
