package dispute

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
)

func newDisputeMetric() *disputeMetric {
	return &disputeMetric{}
}

type disputeMetric struct {
	mtx            sync.RWMutex
	OpenDisputes   int64 `json:"open_disputes"`
	FinalizedTotal int64 `json:"finalized_total"`
	NoQuorumTotal  int64 `json:"no_quorum_total"`
	VotesAccepted  int64 `json:"votes_accepted"`
	VotesRejected  int64 `json:"votes_rejected"`
}

func (dm *disputeMetric) JSONString() string {
	dm.mtx.RLock()
	defer dm.mtx.RUnlock()
	s, _ := jsoniter.MarshalToString(dm)
	return s
}

func (dm *disputeMetric) MarkOpened() {
	dm.mtx.Lock()
	defer dm.mtx.Unlock()
	dm.OpenDisputes++
}

func (dm *disputeMetric) MarkFinalized(noQuorum bool) {
	dm.mtx.Lock()
	defer dm.mtx.Unlock()
	dm.OpenDisputes--
	dm.FinalizedTotal++
	if noQuorum {
		dm.NoQuorumTotal++
	}
}

func (dm *disputeMetric) MarkVote(accepted bool) {
	dm.mtx.Lock()
	defer dm.mtx.Unlock()
	if accepted {
		dm.VotesAccepted++
	} else {
		dm.VotesRejected++
	}
}
