package settlement

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/service"

	"highcourt/config"
	"highcourt/payment"
	"highcourt/store"
	"highcourt/types"
)

// Retrier 异步消化PAYOUT_PENDING的settlement
// payout的成败与dispute finality完全解耦
type Retrier struct {
	service.BaseService

	config *config.SettlementConfig
	store  store.Store
	rail   payment.Rail
	metric *settlementMetric

	quit chan struct{}
}

func NewRetrier(cfg *config.SettlementConfig, st store.Store, rail payment.Rail, executor *Executor) *Retrier {
	r := &Retrier{
		config: cfg,
		store:  st,
		rail:   rail,
		metric: executor.metric,
		quit:   make(chan struct{}),
	}
	r.BaseService = *service.NewBaseService(nil, "PAYOUT_RETRY", r)
	return r
}

func (r *Retrier) OnStart() error {
	go r.retryRoutine()
	return nil
}

func (r *Retrier) OnStop() {
	close(r.quit)
}

func (r *Retrier) retryRoutine() {
	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			r.RetryOnce()
		}
	}
}

// RetryOnce 扫描一轮pending队列
func (r *Retrier) RetryOnce() {
	pending, err := r.store.PendingPayouts()
	if err != nil {
		r.Logger.Error("scan pending payouts failed", "err", err)
		return
	}
	r.metric.MarkPendingPayouts(int64(len(pending)))

	for _, disputeID := range pending {
		record, err := r.store.LoadSettlement(disputeID)
		if err != nil {
			r.Logger.Error("pending payout without settlement record", "case", disputeID, "err", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.config.PayoutTimeout)
		ref, err := r.rail.Pay(ctx, payment.Instruction{
			SettlementID: record.DisputeID,
			Kind:         payment.KindBurn,
			Amount:       record.TreasuryBurn,
		})
		cancel()
		if err != nil {
			r.Logger.Info("payout still pending", "case", disputeID, "err", err)
			continue
		}

		if err := r.store.ResolvePayout(disputeID, ref, types.PayoutSettled); err != nil {
			r.Logger.Error("resolve payout failed", "case", disputeID, "err", err)
			continue
		}
		r.Logger.Info("pending payout settled", "case", disputeID, "tx", ref)
	}

	if remaining, err := r.store.PendingPayouts(); err == nil {
		r.metric.MarkPendingPayouts(int64(len(remaining)))
	}
}
