package settlement

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
)

func newSettlementMetric() *settlementMetric {
	return &settlementMetric{}
}

type settlementMetric struct {
	mtx            sync.RWMutex
	SettledTotal   int64 `json:"settled_total"`
	PendingPayouts int64 `json:"pending_payouts"`
	TreasuryBurn   int64 `json:"treasury_burn_total"`
}

func (sm *settlementMetric) JSONString() string {
	sm.mtx.RLock()
	defer sm.mtx.RUnlock()
	s, _ := jsoniter.MarshalToString(sm)
	return s
}

func (sm *settlementMetric) MarkSettled(burn int64) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()
	sm.SettledTotal++
	sm.TreasuryBurn += burn
}

func (sm *settlementMetric) MarkPendingPayouts(n int64) {
	sm.mtx.Lock()
	defer sm.mtx.Unlock()
	sm.PendingPayouts = n
}
