package appeal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"highcourt/attest"
	"highcourt/config"
	"highcourt/crypto/bls"
	"highcourt/registry"
	"highcourt/tally"
	"highcourt/types"
)

// ----- utility func -----

type mockTribunal struct {
	created []*types.Dispute
	err     error
}

func (mt *mockTribunal) CreateDispute(subject types.NodeID, evidenceRef []byte) (*types.Dispute, error) {
	if mt.err != nil {
		return nil, mt.err
	}
	d := &types.Dispute{
		CaseID:       "CASE-APPEAL-1",
		Subject:      subject,
		AssignmentID: "ASGN-1-TEST",
		EvidenceRef:  evidenceRef,
		Phase:        types.DisputeDeliberating,
	}
	mt.created = append(mt.created, d)
	return d, nil
}

type appealFixture struct {
	manager  *Manager
	registry *registry.Registry
	quotes   *attest.QuoteVerifier
	tribunal *mockTribunal
	subject  *types.Node
}

func newAppealFixture(t *testing.T) *appealFixture {
	cfg := config.TestConfig().Appeal
	reg := registry.NewRegistry(0, 0, log.TestingLogger())
	quotes := attest.NewQuoteVerifier([]byte(cfg.AttestationRoot))
	tribunal := &mockTribunal{}

	subject := types.NewNode(bls.GenPrivKey().PubKey(), 500, 1_000_000)
	require.NoError(t, reg.Register(subject))
	require.NoError(t, reg.SetStatus(subject.ID, types.NodeQuarantined))

	m := NewManager(cfg, reg, quotes, tribunal)
	m.SetLogger(log.TestingLogger())

	return &appealFixture{
		manager:  m,
		registry: reg,
		quotes:   quotes,
		tribunal: tribunal,
		subject:  subject,
	}
}

// 把申诉推进到ATTESTATION_PENDING
func (f *appealFixture) openAppeal(t *testing.T) *Appeal {
	a, err := f.manager.Notify(f.subject.ID)
	require.NoError(t, err)
	require.Equal(t, StateNotified, a.State)

	a, err = f.manager.Submit(a.ID, "DEPOSIT-REF-1")
	require.NoError(t, err)
	require.Equal(t, StateAttestationPending, a.State)
	require.NotEmpty(t, a.Nonce, "提交后必须发放挑战nonce")
	return a
}

// ----- tests -----

func TestAppealHappyPath(t *testing.T) {
	f := newAppealFixture(t)
	a := f.openAppeal(t)

	// 硬件守护进程对nonce出quote
	quote := f.quotes.MakeQuote(string(f.subject.ID), a.Nonce)
	a, err := f.manager.SubmitAttestation(a.ID, quote)
	require.NoError(t, err)
	assert.Equal(t, StateHearing, a.State)
	assert.Equal(t, "CASE-APPEAL-1", a.CaseID)
	require.Len(t, f.tribunal.created, 1)

	// 陪审团RESTORE → 节点恢复ACTIVE
	f.manager.OnDisputeFinalized(f.tribunal.created[0], tally.Result{Outcome: types.OutcomeRestore})

	a, err = f.manager.GetAppeal(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StateResolved, a.State)
	assert.Equal(t, types.OutcomeRestore, a.Outcome)
	node, _ := f.registry.Get(f.subject.ID)
	assert.Equal(t, types.NodeActive, node.Status)
}

func TestAppealBanOutcome(t *testing.T) {
	f := newAppealFixture(t)
	a := f.openAppeal(t)

	quote := f.quotes.MakeQuote(string(f.subject.ID), a.Nonce)
	a, err := f.manager.SubmitAttestation(a.ID, quote)
	require.NoError(t, err)

	f.manager.OnDisputeFinalized(f.tribunal.created[0], tally.Result{Outcome: types.OutcomeBan})

	node, _ := f.registry.Get(f.subject.ID)
	assert.Equal(t, types.NodeBanned, node.Status)
}

func TestAppealNoQuorumKeepsQuarantine(t *testing.T) {
	f := newAppealFixture(t)
	a := f.openAppeal(t)

	quote := f.quotes.MakeQuote(string(f.subject.ID), a.Nonce)
	_, err := f.manager.SubmitAttestation(a.ID, quote)
	require.NoError(t, err)

	f.manager.OnDisputeFinalized(f.tribunal.created[0], tally.Result{Outcome: types.OutcomeNoQuorum})

	// 人工复核前维持QUARANTINED
	node, _ := f.registry.Get(f.subject.ID)
	assert.Equal(t, types.NodeQuarantined, node.Status)
	a, _ = f.manager.GetAppeal(a.ID)
	assert.Equal(t, StateResolved, a.State)
}

func TestAppealAttestationFailure(t *testing.T) {
	f := newAppealFixture(t)
	a := f.openAppeal(t)

	// 伪造的quote过不了HMAC校验
	_, err := f.manager.SubmitAttestation(a.ID, []byte("forged-quote"))
	assert.ErrorIs(t, err, ErrAttestationFailure)

	// 节点保持QUARANTINED，没有开庭
	node, _ := f.registry.Get(f.subject.ID)
	assert.Equal(t, types.NodeQuarantined, node.Status)
	assert.Empty(t, f.tribunal.created)
}

func TestAppealStaleNonce(t *testing.T) {
	f := newAppealFixture(t)
	f.manager.config.NonceTTL = 10 * time.Millisecond

	a := f.openAppeal(t)
	quote := f.quotes.MakeQuote(string(f.subject.ID), a.Nonce)

	time.Sleep(30 * time.Millisecond)
	_, err := f.manager.SubmitAttestation(a.ID, quote)
	assert.ErrorIs(t, err, ErrStaleNonce)

	// nonce过期后回到NOTIFIED，重新Submit拿新挑战
	a, err = f.manager.GetAppeal(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StateNotified, a.State)

	f.manager.config.NonceTTL = time.Minute
	a, err = f.manager.Submit(a.ID, "DEPOSIT-REF-1")
	require.NoError(t, err)
	assert.Equal(t, StateAttestationPending, a.State)
}

func TestAppealValidation(t *testing.T) {
	f := newAppealFixture(t)

	t.Run("not quarantined", func(t *testing.T) {
		active := types.NewNode(bls.GenPrivKey().PubKey(), 1000, 3_000_000)
		require.NoError(t, f.registry.Register(active))
		_, err := f.manager.Notify(active.ID)
		assert.ErrorIs(t, err, ErrNotQuarantined)
	})

	t.Run("missing deposit", func(t *testing.T) {
		a, err := f.manager.Notify(f.subject.ID)
		require.NoError(t, err)
		_, err = f.manager.Submit(a.ID, "")
		assert.ErrorIs(t, err, ErrMissingDeposit)
	})

	t.Run("duplicate appeal", func(t *testing.T) {
		_, err := f.manager.Notify(f.subject.ID)
		assert.ErrorIs(t, err, ErrAppealExists)
	})

	t.Run("unknown appeal", func(t *testing.T) {
		_, err := f.manager.SubmitAttestation("APL-MISSING", []byte("quote"))
		assert.ErrorIs(t, err, ErrUnknownAppeal)
		_, err = f.manager.GetAppeal("APL-MISSING")
		assert.ErrorIs(t, err, ErrUnknownAppeal)
	})

	t.Run("wrong state", func(t *testing.T) {
		a, err := f.manager.AppealOf(f.subject.ID)
		require.NoError(t, err)
		// 还在NOTIFIED，attestation无从谈起
		_, err = f.manager.SubmitAttestation(a.ID, []byte("quote"))
		assert.ErrorIs(t, err, ErrWrongState)
	})
}
