package privval

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highcourt/types"
)

func TestGenSaveLoadFileJuror(t *testing.T) {
	keyFilePath := filepath.Join(t.TempDir(), "juror_key.json")

	fj := GenFileJuror(keyFilePath)
	fj.Save()

	loaded := LoadFileJuror(keyFilePath)
	assert.Equal(t, fj.NodeID(), loaded.NodeID())

	pub, err := fj.GetPubKey()
	require.NoError(t, err)
	loadedPub, err := loaded.GetPubKey()
	require.NoError(t, err)
	assert.True(t, pub.Equals(loadedPub))
}

func TestGenFileJurorWithSeedAndIdx(t *testing.T) {
	dir := t.TempDir()

	// 同(seed, thres, idx)生成同样的juror身份
	a := GenFileJurorWithSeedAndIdx(filepath.Join(dir, "a.json"), 3, 1, 42)
	b := GenFileJurorWithSeedAndIdx(filepath.Join(dir, "b.json"), 3, 1, 42)
	assert.Equal(t, a.NodeID(), b.NodeID())

	// 不同idx是不同节点
	c := GenFileJurorWithSeedAndIdx(filepath.Join(dir, "c.json"), 3, 2, 42)
	assert.NotEqual(t, a.NodeID(), c.NodeID())
}

func TestLoadOrGenFileJuror(t *testing.T) {
	keyFilePath := filepath.Join(t.TempDir(), "juror_key.json")

	first := LoadOrGenFileJuror(keyFilePath)
	second := LoadOrGenFileJuror(keyFilePath)
	assert.Equal(t, first.NodeID(), second.NodeID(), "第二次必须加载同一个身份")
}

func TestSignVote(t *testing.T) {
	keyFilePath := filepath.Join(t.TempDir(), "juror_key.json")
	fj := GenFileJuror(keyFilePath)

	vote := &types.Vote{
		DisputeID: "CASE-1",
		JurorID:   fj.NodeID(),
		Verdict:   types.RestoreVerdict,
	}
	require.NoError(t, fj.SignVote("engine-test", vote))
	require.NotEmpty(t, vote.Signature)

	pub, err := fj.GetPubKey()
	require.NoError(t, err)
	assert.True(t, pub.VerifySignature(types.VoteSignBytes("engine-test", vote), vote.Signature))

	// 换engine id后签名失效
	assert.False(t, pub.VerifySignature(types.VoteSignBytes("other-engine", vote), vote.Signature))
}
