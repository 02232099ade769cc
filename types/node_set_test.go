package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highcourt/crypto/bls"
)

// ----- utility func -----

func makeNodes(t *testing.T, n int) []*Node {
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = NewNode(bls.GenPrivKeyWithSeed(int64(1000+i)).PubKey(), 800, 100_000)
	}
	return nodes
}

// ----- tests -----

func TestNodeSetOrdering(t *testing.T) {
	nodes := makeNodes(t, 5)

	ns1 := NewNodeSet(nodes)
	// 逆序输入得到同样的集合
	reversed := make([]*Node, len(nodes))
	for i, n := range nodes {
		reversed[len(nodes)-1-i] = n
	}
	ns2 := NewNodeSet(reversed)

	require.Equal(t, ns1.IDs(), ns2.IDs())

	// id升序
	ids := ns1.IDs()
	for i := 1; i < len(ids); i++ {
		assert.True(t, ids[i-1] < ids[i], "集合必须按id升序")
	}
}

func TestNodeSetCopySemantics(t *testing.T) {
	nodes := makeNodes(t, 3)
	ns := NewNodeSet(nodes)

	// 构造时拷贝：改原始node不影响集合
	nodes[0].Reputation = 0
	_, inSet := ns.GetByID(nodes[0].ID)
	require.NotNil(t, inSet)
	assert.EqualValues(t, 800, inSet.Reputation)

	// 读取时拷贝：改返回值不影响集合
	inSet.Bond = 0
	_, again := ns.GetByID(nodes[0].ID)
	assert.EqualValues(t, 100_000, again.Bond)

	// Copy整体独立
	cp := ns.Copy()
	cp.Nodes[0].Reputation = 1
	_, orig := ns.GetByID(cp.Nodes[0].ID)
	assert.EqualValues(t, 800, orig.Reputation)
}

func TestNodeSetLookup(t *testing.T) {
	nodes := makeNodes(t, 3)
	ns := NewNodeSet(nodes)

	assert.Equal(t, 3, ns.Size())
	assert.True(t, ns.HasID(nodes[1].ID))
	assert.False(t, ns.HasID(NodeID("NODE_missing")))

	idx, n := ns.GetByID(nodes[1].ID)
	require.NotNil(t, n)
	assert.Equal(t, n.ID, ns.GetByIndex(idx).ID)
	assert.Nil(t, ns.GetByIndex(99))

	count := 0
	ns.Iterate(func(i int, node *Node) bool {
		count++
		return false
	})
	assert.Equal(t, 3, count)
}

func TestNodeSetDuplicatePanics(t *testing.T) {
	nodes := makeNodes(t, 2)
	assert.Panics(t, func() {
		NewNodeSet([]*Node{nodes[0], nodes[1], nodes[0]})
	})
}
