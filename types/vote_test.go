package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteValidateBasic(t *testing.T) {
	vote := &Vote{
		DisputeID: "CASE-1",
		JurorID:   "NODE_A",
		Verdict:   RestoreVerdict,
		Signature: []byte("sig"),
	}
	require.NoError(t, vote.ValidateBasic())

	bad := *vote
	bad.Verdict = Verdict(9)
	assert.Error(t, bad.ValidateBasic())

	bad = *vote
	bad.Signature = nil
	assert.Error(t, bad.ValidateBasic())

	bad = *vote
	bad.DisputeID = ""
	assert.Error(t, bad.ValidateBasic())
}

func TestVoteSignBytes(t *testing.T) {
	vote := &Vote{
		DisputeID:   "CASE-1",
		JurorID:     "NODE_A",
		Verdict:     BanVerdict,
		Signature:   []byte("first-signature"),
		SubmittedAt: time.Unix(1700000000, 0),
	}

	bz := VoteSignBytes("engine-1", vote)

	// 签名载荷不包含signature和本地时间戳
	later := *vote
	later.Signature = []byte("another-signature")
	later.SubmittedAt = time.Unix(1800000000, 0)
	assert.Equal(t, bz, VoteSignBytes("engine-1", &later))

	// engine id进入载荷，跨网络不可重放
	assert.NotEqual(t, bz, VoteSignBytes("engine-2", vote))
}

func TestVerdictFromString(t *testing.T) {
	v, err := VerdictFromString("RESTORE")
	require.NoError(t, err)
	assert.Equal(t, RestoreVerdict, v)

	v, err = VerdictFromString("BAN")
	require.NoError(t, err)
	assert.Equal(t, BanVerdict, v)

	_, err = VerdictFromString("MAYBE")
	assert.Error(t, err)
}

func TestOutcomeFromVerdict(t *testing.T) {
	assert.Equal(t, OutcomeRestore, OutcomeFromVerdict(RestoreVerdict))
	assert.Equal(t, OutcomeBan, OutcomeFromVerdict(BanVerdict))

	assert.True(t, OutcomeBan.Adverse())
	assert.False(t, OutcomeRestore.Adverse())
	assert.False(t, OutcomeNoQuorum.Adverse())
}
