package appeal

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	tmrand "github.com/tendermint/tendermint/libs/rand"
	"github.com/tendermint/tendermint/libs/service"

	"highcourt/attest"
	"highcourt/config"
	"highcourt/tally"
	"highcourt/types"
)

// State 申诉状态机的阶段
type State string

const (
	// 节点被隔离并已收到申诉通知
	StateNotified  State = "NOTIFIED"
	StateSubmitted State = "APPEAL_SUBMITTED"
	// 等待硬件quote，nonce在TTL内有效
	StateAttestationPending State = "ATTESTATION_PENDING"
	// attestation通过，复核争议已交给dispute manager
	StateHearing  State = "HEARING"
	StateResolved State = "RESOLVED"
)

// Appeal 单个申诉的全部状态
type Appeal struct {
	ID         string        `json:"id"`
	Subject    types.NodeID  `json:"subject"`
	DepositRef string        `json:"deposit_ref"`
	State      State         `json:"state"`
	Nonce      string        `json:"nonce"`
	NonceAt    time.Time     `json:"nonce_at"`
	CaseID     string        `json:"case_id"`
	Outcome    types.Outcome `json:"outcome"`
	OpenedAt   time.Time     `json:"opened_at"`
}

func (a *Appeal) Copy() *Appeal {
	cp := *a
	return &cp
}

// Directory 申诉通道需要的注册表能力
type Directory interface {
	Get(id types.NodeID) (*types.Node, error)
	SetStatus(id types.NodeID, status types.NodeStatus) error
}

// Tribunal 把申诉复核委托给dispute manager
type Tribunal interface {
	CreateDispute(subject types.NodeID, evidenceRef []byte) (*types.Dispute, error)
}

// Manager drives the appeal/recovery path for quarantined nodes.
//
// NOTIFIED → APPEAL_SUBMITTED → ATTESTATION_PENDING → HEARING → RESOLVED
// attestation失败不会推进状态，节点保持QUARANTINED，押金不退。
type Manager struct {
	service.BaseService

	config   *config.AppealConfig
	registry Directory
	quotes   *attest.QuoteVerifier
	tribunal Tribunal

	mtx       sync.RWMutex
	appeals   map[string]*Appeal
	bySubject map[types.NodeID]string
	byCase    map[string]string
}

func NewManager(cfg *config.AppealConfig, registry Directory, quotes *attest.QuoteVerifier, tribunal Tribunal) *Manager {
	m := &Manager{
		config:    cfg,
		registry:  registry,
		quotes:    quotes,
		tribunal:  tribunal,
		appeals:   make(map[string]*Appeal),
		bySubject: make(map[types.NodeID]string),
		byCase:    make(map[string]string),
	}
	m.BaseService = *service.NewBaseService(nil, "APPEAL", m)
	return m
}

func (m *Manager) OnStart() error { return nil }
func (m *Manager) OnStop()        {}

// Notify 节点进入隔离后登记一条NOTIFIED记录，作为申诉入口
func (m *Manager) Notify(subject types.NodeID) (*Appeal, error) {
	node, err := m.registry.Get(subject)
	if err != nil {
		return nil, err
	}
	if node.Status != types.NodeQuarantined {
		return nil, ErrNotQuarantined
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	if id, ok := m.bySubject[subject]; ok {
		if a := m.appeals[id]; a != nil && a.State != StateResolved {
			return nil, ErrAppealExists
		}
	}

	a := &Appeal{
		ID:       fmt.Sprintf("APL-%s-%X", subject, tmrand.Bytes(4)),
		Subject:  subject,
		State:    StateNotified,
		OpenedAt: time.Now(),
	}
	m.appeals[a.ID] = a
	m.bySubject[subject] = a.ID
	m.Logger.Info("appeal channel opened", "appeal", a.ID, "subject", subject)
	return a.Copy(), nil
}

// Submit 提交申诉押金，发放attestation挑战nonce
// 押金必须先于ATTESTATION_PENDING被确认
func (m *Manager) Submit(appealID string, depositRef string) (*Appeal, error) {
	if depositRef == "" {
		return nil, ErrMissingDeposit
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	a, ok := m.appeals[appealID]
	if !ok {
		return nil, ErrUnknownAppeal
	}
	if a.State != StateNotified {
		return nil, ErrWrongState
	}

	a.DepositRef = depositRef
	a.State = StateSubmitted

	a.Nonce = hex.EncodeToString(tmrand.Bytes(16))
	a.NonceAt = time.Now()
	a.State = StateAttestationPending

	m.Logger.Info("appeal submitted, challenge issued", "appeal", a.ID, "subject", a.Subject)
	return a.Copy(), nil
}

// SubmitAttestation verifies the nonce-bound hardware quote. On success the
// case is handed to the tribunal for a fresh panel hearing.
func (m *Manager) SubmitAttestation(appealID string, quote []byte) (*Appeal, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	a, ok := m.appeals[appealID]
	if !ok {
		return nil, ErrUnknownAppeal
	}
	if a.State != StateAttestationPending {
		return nil, ErrWrongState
	}
	if time.Since(a.NonceAt) > m.config.NonceTTL {
		// 过期nonce一律拒绝，重新Submit才能拿到新挑战
		a.State = StateNotified
		a.Nonce = ""
		return nil, ErrStaleNonce
	}
	if !m.quotes.VerifyQuote(string(a.Subject), a.Nonce, quote) {
		m.Logger.Error("attestation rejected", "appeal", a.ID, "subject", a.Subject)
		return nil, ErrAttestationFailure
	}

	d, err := m.tribunal.CreateDispute(a.Subject, []byte(a.ID))
	if err != nil {
		return nil, err
	}
	a.CaseID = d.CaseID
	a.State = StateHearing
	m.byCase[d.CaseID] = a.ID

	m.Logger.Info("attestation accepted, hearing opened", "appeal", a.ID, "case", d.CaseID)
	return a.Copy(), nil
}

// OnDisputeFinalized 作为dispute manager的finality hook注册
// RESTORE恢复ACTIVE，BAN转BANNED，NO_QUORUM保持QUARANTINED等待人工复核
func (m *Manager) OnDisputeFinalized(d *types.Dispute, result tally.Result) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	id, ok := m.byCase[d.CaseID]
	if !ok {
		return
	}
	a := m.appeals[id]
	if a == nil || a.State != StateHearing {
		return
	}

	switch result.Outcome {
	case types.OutcomeRestore:
		if err := m.registry.SetStatus(a.Subject, types.NodeActive); err != nil {
			m.Logger.Error("restore failed", "appeal", a.ID, "err", err)
		}
	case types.OutcomeBan:
		if err := m.registry.SetStatus(a.Subject, types.NodeBanned); err != nil {
			m.Logger.Error("ban failed", "appeal", a.ID, "err", err)
		}
	case types.OutcomeNoQuorum:
		// 维持现状，案件已进escalation队列
	}

	a.Outcome = result.Outcome
	a.State = StateResolved
	m.Logger.Info("appeal resolved", "appeal", a.ID, "outcome", result.Outcome)
}

// GetAppeal returns the appeal by id.
func (m *Manager) GetAppeal(appealID string) (*Appeal, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	a, ok := m.appeals[appealID]
	if !ok {
		return nil, ErrUnknownAppeal
	}
	return a.Copy(), nil
}

// AppealOf returns the in-flight appeal for a subject, if any.
func (m *Manager) AppealOf(subject types.NodeID) (*Appeal, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	id, ok := m.bySubject[subject]
	if !ok {
		return nil, ErrUnknownAppeal
	}
	return m.appeals[id].Copy(), nil
}
