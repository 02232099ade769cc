package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highcourt/crypto/bls"
)

func TestNodeIDFromPubKey(t *testing.T) {
	pub := bls.GenPrivKey().PubKey()

	id := NodeIDFromPubKey(pub)
	assert.True(t, strings.HasPrefix(string(id), "NODE_"))
	assert.Len(t, string(id), len("NODE_")+16)

	// 同公钥同ID
	assert.Equal(t, id, NodeIDFromPubKey(pub))
	assert.NotEqual(t, id, NodeIDFromPubKey(bls.GenPrivKey().PubKey()))
}

func TestNodeValidateBasic(t *testing.T) {
	priv := bls.GenPrivKey()
	node := NewNode(priv.PubKey(), 1000, 2_000_000)
	require.NoError(t, node.ValidateBasic())

	// ID与公钥不匹配
	bad := node.Copy()
	bad.ID = "NODE_FFFFFFFFFFFFFFFF"
	assert.Error(t, bad.ValidateBasic())

	bad = node.Copy()
	bad.Reputation = 1001
	assert.Error(t, bad.ValidateBasic())

	bad = node.Copy()
	bad.Bond = -1
	assert.Error(t, bad.ValidateBasic())
}

func TestClampAndFloor(t *testing.T) {
	assert.EqualValues(t, 1000, ClampReputation(5000))
	assert.EqualValues(t, 0, ClampReputation(-200))
	assert.EqualValues(t, 750, ClampReputation(750))

	assert.EqualValues(t, 0, FloorBond(-1))
	assert.EqualValues(t, 100, FloorBond(100))
}
