package dispute

import (
	"sync"
	"time"

	"highcourt/types"
)

// session - 单个dispute的运行时状态
// 所有访问都在mtx下串行化：最后一票的"是否集齐"判断与
// DELIBERATING→TALLYING切换必须是原子的
type session struct {
	mtx sync.Mutex

	dispute    *types.Dispute
	assignment *types.JurorAssignment

	// append-only选票日志
	votes []*types.Vote
	voted map[types.NodeID]bool

	timer *time.Timer
}

func newSession(d *types.Dispute, assignment *types.JurorAssignment) *session {
	return &session{
		dispute:    d,
		assignment: assignment,
		votes:      []*types.Vote{},
		voted:      make(map[types.NodeID]bool),
	}
}

// stopTimer is safe to call multiple times and with a nil timer.
func (s *session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

// voteCopy 返回选票日志的快照
func (s *session) voteCopy() []*types.Vote {
	out := make([]*types.Vote, len(s.votes))
	copy(out, s.votes)
	return out
}
