package tally

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highcourt/types"
)

const testEngineID = "highcourt-test"

// ----- utility func -----

type keyMap map[types.NodeID]*types.Node

func (km keyMap) Get(id types.NodeID) (*types.Node, error) {
	node, ok := km[id]
	if !ok {
		return nil, errors.New("unknown juror")
	}
	return node, nil
}

// 生成count个签过名的选票以及对应的公钥表
func makeSignedVotes(t *testing.T, caseID string, verdicts []types.Verdict) ([]*types.Vote, keyMap) {
	votes := make([]*types.Vote, len(verdicts))
	keys := make(keyMap, len(verdicts))

	for i, verdict := range verdicts {
		signer := types.NewMockSigner()
		vote := &types.Vote{
			DisputeID: caseID,
			JurorID:   signer.NodeID(),
			Verdict:   verdict,
		}
		require.NoError(t, signer.SignVote(testEngineID, vote))

		pub, err := signer.GetPubKey()
		require.NoError(t, err)
		votes[i] = vote
		keys[vote.JurorID] = &types.Node{ID: vote.JurorID, PubKey: pub}
	}
	return votes, keys
}

func plainVotes(verdicts ...types.Verdict) []*types.Vote {
	votes := make([]*types.Vote, len(verdicts))
	for i, v := range verdicts {
		votes[i] = &types.Vote{
			DisputeID: "CASE-TEST",
			JurorID:   types.NodeID(fmt.Sprintf("NODE_%02d", i)),
			Verdict:   v,
		}
	}
	return votes
}

// ----- tests -----

func TestResolveMajority(t *testing.T) {
	// 5 RESTORE : 2 BAN，严格多数
	votes := plainVotes(
		types.RestoreVerdict, types.RestoreVerdict, types.RestoreVerdict,
		types.RestoreVerdict, types.RestoreVerdict,
		types.BanVerdict, types.BanVerdict,
	)

	result := Resolve(votes, 4)
	assert.Equal(t, types.OutcomeRestore, result.Outcome)
	assert.Equal(t, 7, result.Received)
	assert.Len(t, result.Majority, 5)
	assert.Len(t, result.Minority, 2)

	for _, v := range result.Majority {
		assert.Equal(t, types.RestoreVerdict, v.Verdict)
	}
	for _, v := range result.Minority {
		assert.Equal(t, types.BanVerdict, v.Verdict)
	}
}

func TestResolveAdverseMajority(t *testing.T) {
	votes := plainVotes(
		types.BanVerdict, types.BanVerdict, types.BanVerdict, types.BanVerdict,
		types.RestoreVerdict,
	)

	result := Resolve(votes, 4)
	assert.Equal(t, types.OutcomeBan, result.Outcome)
	assert.True(t, result.Outcome.Adverse())
}

func TestResolveBelowQuorum(t *testing.T) {
	// 3票不足quorum(4)，哪怕全票一致也不允许裁决
	votes := plainVotes(types.BanVerdict, types.BanVerdict, types.BanVerdict)

	result := Resolve(votes, 4)
	assert.Equal(t, types.OutcomeNoQuorum, result.Outcome)
	assert.Empty(t, result.Majority)
	assert.Empty(t, result.Minority)
}

func TestResolveTie(t *testing.T) {
	// 平票不偏向任何一方
	votes := plainVotes(
		types.RestoreVerdict, types.RestoreVerdict,
		types.BanVerdict, types.BanVerdict,
	)

	result := Resolve(votes, 4)
	assert.Equal(t, types.OutcomeNoQuorum, result.Outcome)
}

func TestResolveZeroVotes(t *testing.T) {
	result := Resolve(nil, 4)
	assert.Equal(t, types.OutcomeNoQuorum, result.Outcome)
	assert.Equal(t, 0, result.Received)
}

func TestCertificate(t *testing.T) {
	votes, keys := makeSignedVotes(t, "CASE-CERT", []types.Verdict{
		types.RestoreVerdict, types.RestoreVerdict, types.RestoreVerdict,
		types.RestoreVerdict, types.BanVerdict,
	})

	resolver := NewResolver(testEngineID, 4, keys)
	result := resolver.Resolve(votes)
	require.Equal(t, types.OutcomeRestore, result.Outcome)

	cert, err := resolver.Certificate(result)
	require.NoError(t, err)
	assert.NotEmpty(t, cert, "多数派裁决必须产出聚合签名")
}

func TestCertificateNoQuorum(t *testing.T) {
	votes, keys := makeSignedVotes(t, "CASE-NQ", []types.Verdict{
		types.RestoreVerdict, types.BanVerdict,
	})

	resolver := NewResolver(testEngineID, 4, keys)
	result := resolver.Resolve(votes)
	require.Equal(t, types.OutcomeNoQuorum, result.Outcome)

	cert, err := resolver.Certificate(result)
	require.NoError(t, err)
	assert.Nil(t, cert, "NO_QUORUM没有多数派，不产生证书")
}

func TestCertificateRejectsForgedVote(t *testing.T) {
	votes, keys := makeSignedVotes(t, "CASE-FORGED", []types.Verdict{
		types.RestoreVerdict, types.RestoreVerdict, types.RestoreVerdict,
		types.RestoreVerdict,
	})
	// 篡改一张多数派选票的签名
	votes[0].Signature = []byte("not-a-valid-signature")

	resolver := NewResolver(testEngineID, 4, keys)
	result := resolver.Resolve(votes)
	require.Equal(t, types.OutcomeRestore, result.Outcome)

	_, err := resolver.Certificate(result)
	assert.Error(t, err, "坏签名必须让证书自检失败")
}
