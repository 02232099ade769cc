package dispute

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tendermint/tendermint/crypto/tmhash"
	"github.com/tendermint/tendermint/libs/service"

	"highcourt/attest"
	"highcourt/config"
	"highcourt/libs/metric"
	"highcourt/store"
	"highcourt/tally"
	"highcourt/types"
)

// NodeDirectory 查注册表里的节点，投票签名校验需要身份公钥
type NodeDirectory interface {
	Get(id types.NodeID) (*types.Node, error)
}

// AssignmentSource 提供当前epoch的陪审团名单，由epoch.Scheduler实现
type AssignmentSource interface {
	LatestAssignment() (*types.JurorAssignment, error)
}

// Settler 清算入口，由settlement.Executor实现
type Settler interface {
	Settle(dispute *types.Dispute, assignment *types.JurorAssignment, result tally.Result) (*types.SettlementRecord, error)
}

// FinalityHook 在dispute到达FINALIZED后被调用，appeal状态机靠它收尾
type FinalityHook func(dispute *types.Dispute, result tally.Result)

// Manager owns the dispute lifecycle.
//
// dispute之间完全独立，可以并发推进；单个dispute内部靠session mtx串行。
// deadline定时器和quorum-complete信号竞争触发TALLYING，
// 谁先到谁生效，后到的信号是no-op。
type Manager struct {
	service.BaseService

	config   *config.DisputeConfig
	engineID string

	directory   NodeDirectory
	verifier    attest.Verifier
	resolver    *tally.Resolver
	settler     Settler
	assignments AssignmentSource
	store       store.Store

	mtx      sync.RWMutex
	sessions map[string]*session
	caseSeq  int64

	hooks  []FinalityHook
	metric *disputeMetric
}

type Option func(*Manager)

// WithFinalityHook 注册finalize回调，必须在Start之前调用
func WithFinalityHook(fn FinalityHook) Option {
	return func(m *Manager) { m.hooks = append(m.hooks, fn) }
}

// AddFinalityHook 构造后注册回调，给appeal这类循环依赖方使用
// 同样必须在Start之前调用
func (m *Manager) AddFinalityHook(fn FinalityHook) {
	m.hooks = append(m.hooks, fn)
}

func NewManager(
	cfg *config.DisputeConfig,
	engineID string,
	directory NodeDirectory,
	verifier attest.Verifier,
	resolver *tally.Resolver,
	settler Settler,
	assignments AssignmentSource,
	st store.Store,
	options ...Option,
) *Manager {
	m := &Manager{
		config:      cfg,
		engineID:    engineID,
		directory:   directory,
		verifier:    verifier,
		resolver:    resolver,
		settler:     settler,
		assignments: assignments,
		store:       st,
		sessions:    make(map[string]*session),
		metric:      newDisputeMetric(),
	}
	m.BaseService = *service.NewBaseService(nil, "DISPUTE", m)

	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *Manager) OnStart() error {
	return m.restoreSessions()
}

// restoreSessions 把store里未finalize的dispute恢复成带timer的session
// 进行中的选票不落盘，重启即作废，panel需要重新投票；
// deadline已过的案子在timer归零后立刻走正常的超时路径
func (m *Manager) restoreSessions() error {
	open, err := m.store.LoadOpenDisputes()
	if err != nil {
		return err
	}
	for _, d := range open {
		assignment, err := m.store.LoadAssignment(d.AssignmentID)
		if err != nil {
			m.Logger.Error("restore skipped, assignment missing",
				"case", d.CaseID, "assignment", d.AssignmentID, "err", err)
			continue
		}

		// TALLYING中途宕机的案子回退重新deliberate
		if d.Phase != types.DisputeDeliberating {
			d.Phase = types.DisputeDeliberating
			if err := m.store.SaveDispute(d); err != nil {
				return err
			}
		}

		s := newSession(d, assignment)
		caseID := d.CaseID
		remaining := time.Until(d.Deadline)
		if remaining < 0 {
			remaining = 0
		}

		s.mtx.Lock()
		m.mtx.Lock()
		m.sessions[caseID] = s
		m.mtx.Unlock()
		s.timer = time.AfterFunc(remaining, func() { m.deadlineFired(caseID) })
		s.mtx.Unlock()

		m.Logger.Info("dispute session restored", "case", caseID, "deadline", d.Deadline)
	}
	return nil
}

func (m *Manager) OnStop() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, s := range m.sessions {
		s.mtx.Lock()
		s.stopTimer()
		s.mtx.Unlock()
	}
}

// Metric exposes the dispute metric item.
func (m *Manager) Metric() metric.MetricItem {
	return m.metric
}

//----------------------------------------
// lifecycle

// CreateDispute opens a dispute against subject using the current epoch's
// panel. 创建后立刻进入DELIBERATING - OPEN单独存在是因为appeal变体
// 要在进入DELIBERATING前插一个attestation步骤
func (m *Manager) CreateDispute(subject types.NodeID, evidenceRef []byte) (*types.Dispute, error) {
	if _, err := m.directory.Get(subject); err != nil {
		return nil, ErrUnknownSubject
	}

	assignment, err := m.assignments.LatestAssignment()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	d := &types.Dispute{
		CaseID:       m.nextCaseID(subject),
		Subject:      subject,
		AssignmentID: assignment.ID,
		EvidenceRef:  evidenceRef,
		Phase:        types.DisputeOpen,
		OpenedAt:     now,
		Deadline:     now.Add(m.config.VoteWindow),
	}

	// OPEN→DELIBERATING没有额外的gate
	d.Phase = types.DisputeDeliberating
	if err := m.store.SaveDispute(d); err != nil {
		return nil, err
	}

	s := newSession(d, assignment)
	caseID := d.CaseID

	// 持有session锁完成发布和timer装配：
	// 并发的SubmitVote/deadlineFired/OnStop都要先过s.mtx
	s.mtx.Lock()
	m.mtx.Lock()
	m.sessions[caseID] = s
	m.mtx.Unlock()
	s.timer = time.AfterFunc(m.config.VoteWindow, func() { m.deadlineFired(caseID) })
	s.mtx.Unlock()

	m.metric.MarkOpened()
	m.Logger.Info("dispute opened",
		"case", d.CaseID,
		"subject", subject,
		"assignment", assignment.ID,
		"deadline", d.Deadline)
	return d.Copy(), nil
}

// SubmitVote validates and records a juror vote.
//
// 校验顺序：阶段 → 名单成员 → 重复 → 签名。
// 任何失败都不产生状态变化。
func (m *Manager) SubmitVote(caseID string, jurorID types.NodeID, verdict types.Verdict, signature []byte) error {
	s := m.session(caseID)
	if s == nil {
		return ErrUnknownDispute
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.dispute.Phase != types.DisputeDeliberating {
		m.metric.MarkVote(false)
		return ErrWrongPhase{Phase: s.dispute.Phase}
	}
	if !s.assignment.IsMember(jurorID) {
		m.metric.MarkVote(false)
		return ErrNotPanelMember
	}
	if s.voted[jurorID] {
		m.metric.MarkVote(false)
		return ErrDuplicateVote
	}

	vote := &types.Vote{
		DisputeID:   caseID,
		JurorID:     jurorID,
		Verdict:     verdict,
		Signature:   signature,
		SubmittedAt: time.Now(),
	}
	if err := vote.ValidateBasic(); err != nil {
		m.metric.MarkVote(false)
		return err
	}

	juror, err := m.directory.Get(jurorID)
	if err != nil {
		m.metric.MarkVote(false)
		return ErrNotPanelMember
	}
	if !m.verifier.Verify(juror.PubKey, types.VoteSignBytes(m.engineID, vote), signature) {
		m.metric.MarkVote(false)
		return ErrInvalidSignature
	}

	s.votes = append(s.votes, vote)
	s.voted[jurorID] = true
	m.metric.MarkVote(true)
	m.Logger.Debug("vote accepted",
		"case", caseID,
		"juror", s.assignment.HandleOf(jurorID),
		"received", len(s.votes))

	// 最后一票当场触发tally，和deadline的竞争在enterTallying里消解
	if len(s.votes) == s.assignment.PanelSize() {
		m.enterTallying(s, "quorum complete")
	}
	return nil
}

// deadlineFired - 投票窗口超时，带着已有的部分选票进入TALLYING
// 这是正常转移，不是错误路径
func (m *Manager) deadlineFired(caseID string) {
	s := m.session(caseID)
	if s == nil {
		return
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	m.enterTallying(s, "deadline")
}

// enterTallying 推进DELIBERATING→TALLYING→FINALIZED
// caller必须持有s.mtx。幂等：竞争中后到的信号在phase guard处直接返回
func (m *Manager) enterTallying(s *session, reason string) {
	if s.dispute.Phase != types.DisputeDeliberating {
		return
	}
	s.stopTimer()

	d := s.dispute
	d.Phase = types.DisputeTallying
	m.Logger.Info("enter tallying", "case", d.CaseID, "reason", reason, "votes", len(s.votes))
	if err := m.store.SaveDispute(d); err != nil {
		m.Logger.Error("persist tallying phase failed", "case", d.CaseID, "err", err)
	}

	result := m.resolver.Resolve(s.voteCopy())

	cert, err := m.resolver.Certificate(result)
	if err != nil {
		// 证书是加分项，失败不阻塞finality
		m.Logger.Error("finality certificate failed", "case", d.CaseID, "err", err)
	}

	d.Outcome = result.Outcome
	d.Certificate = cert
	d.Phase = types.DisputeFinalized
	if err := m.store.SaveDispute(d); err != nil {
		m.Logger.Error("persist finalized dispute failed", "case", d.CaseID, "err", err)
	}
	if err := m.store.SaveVoteLog(d.CaseID, s.votes); err != nil {
		m.Logger.Error("persist vote log failed", "case", d.CaseID, "err", err)
	}

	m.metric.MarkFinalized(result.Outcome == types.OutcomeNoQuorum)
	m.Logger.Info("dispute finalized", "case", d.CaseID, "outcome", result.Outcome, "received", result.Received)

	if result.Outcome == types.OutcomeNoQuorum {
		// 少数派不可自动裁决，转人工复核
		if err := m.store.PushEscalation(d.CaseID); err != nil {
			m.Logger.Error("escalation enqueue failed", "case", d.CaseID, "err", err)
		}
	} else if m.settler != nil {
		if _, err := m.settler.Settle(d.Copy(), s.assignment, result); err != nil {
			// FINALIZED却没有settlement记录属于数据损坏
			m.Logger.Error("settlement failed, operator intervention required", "case", d.CaseID, "err", err)
		}
	}

	for _, fn := range m.hooks {
		fn(d.Copy(), result)
	}
}

//----------------------------------------
// queries

// GetDispute returns the dispute by case id, falling back to the store for
// cases already evicted from memory.
func (m *Manager) GetDispute(caseID string) (*types.Dispute, error) {
	if s := m.session(caseID); s != nil {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		return s.dispute.Copy(), nil
	}

	d, err := m.store.LoadDispute(caseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownDispute
		}
		return nil, err
	}
	return d, nil
}

// AssignmentOf returns the panel attached to the dispute.
func (m *Manager) AssignmentOf(caseID string) (*types.JurorAssignment, error) {
	s := m.session(caseID)
	if s == nil {
		return nil, ErrUnknownDispute
	}
	return s.assignment, nil
}

// VoteCount returns how many votes the dispute has accepted so far.
func (m *Manager) VoteCount(caseID string) int {
	s := m.session(caseID)
	if s == nil {
		return 0
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.votes)
}

func (m *Manager) session(caseID string) *session {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.sessions[caseID]
}

func (m *Manager) nextCaseID(subject types.NodeID) string {
	seq := atomic.AddInt64(&m.caseSeq, 1)
	h := tmhash.Sum([]byte(fmt.Sprintf("%s/%d/%d", subject, seq, time.Now().UnixNano())))
	return fmt.Sprintf("CASE-%d-%X", seq, h[:4])
}
