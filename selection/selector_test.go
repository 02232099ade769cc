package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highcourt/types"
)

// ----- utility func -----

func makePool(count int) []types.NodeID {
	pool := make([]types.NodeID, count)
	for i := 0; i < count; i++ {
		pool[i] = types.NodeID(fmt.Sprintf("NODE_%04d", i))
	}
	return pool
}

// ----- tests -----

func TestSelectJurorsDeterministic(t *testing.T) {
	pool := makePool(20)
	seed := []byte("epoch-seed-1")

	// 同样的(seed, pool)必须产生同样的有序名单
	first, err := SelectJurors(seed, pool, 7)
	require.NoError(t, err)
	second, err := SelectJurors(seed, pool, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second, "抽签结果必须可复现")

	// pool顺序打乱不影响结果
	shuffled := append([]types.NodeID{}, pool...)
	shuffled[0], shuffled[19] = shuffled[19], shuffled[0]
	third, err := SelectJurors(seed, shuffled, 7)
	require.NoError(t, err)
	assert.Equal(t, first, third, "结果只取决于集合，与输入顺序无关")
}

func TestSelectJurorsSeedChangesPanel(t *testing.T) {
	pool := makePool(50)

	a, err := SelectJurors([]byte("seed-a"), pool, 7)
	require.NoError(t, err)
	b, err := SelectJurors([]byte("seed-b"), pool, 7)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "不同seed应该产生不同名单")
}

func TestSelectJurorsPanelIsSubset(t *testing.T) {
	pool := makePool(10)
	panel, err := SelectJurors([]byte("seed"), pool, 7)
	require.NoError(t, err)
	require.Len(t, panel, 7)

	member := make(map[types.NodeID]bool)
	for _, id := range pool {
		member[id] = true
	}
	seen := make(map[types.NodeID]bool)
	for _, id := range panel {
		assert.True(t, member[id], "panel成员必须来自pool")
		assert.False(t, seen[id], "panel不允许重复成员")
		seen[id] = true
	}
}

func TestSelectJurorsInsufficientPool(t *testing.T) {
	pool := makePool(6)

	_, err := SelectJurors([]byte("seed"), pool, 7)
	assert.ErrorIs(t, err, ErrInsufficientCandidatePool)

	// pool刚好等于panel也是合法的
	panel, err := SelectJurors([]byte("seed"), pool, 6)
	require.NoError(t, err)
	assert.Len(t, panel, 6)
}

func TestBlindHandle(t *testing.T) {
	seed := []byte("epoch-seed")
	id := types.NodeID("NODE_0001")

	h1 := BlindHandle(seed, id)
	h2 := BlindHandle(seed, id)
	assert.Equal(t, h1, h2, "同一个epoch里handle必须稳定")
	assert.Contains(t, h1, "JUROR_")

	// handle不能泄露NodeID，换seed后完全不同
	h3 := BlindHandle([]byte("other-seed"), id)
	assert.NotEqual(t, h1, h3)

	other := BlindHandle(seed, types.NodeID("NODE_0002"))
	assert.NotEqual(t, h1, other)
}

func TestMakeAssignment(t *testing.T) {
	pool := makePool(12)
	seed := []byte("epoch-seed-7")

	assignment, err := MakeAssignment(7, seed, pool, 7)
	require.NoError(t, err)
	require.NoError(t, assignment.ValidateBasic())

	assert.EqualValues(t, 7, assignment.Epoch)
	assert.Len(t, assignment.Handles, 7)
	for i, id := range assignment.Jurors {
		assert.Equal(t, BlindHandle(seed, id), assignment.Handles[i], "handle必须与juror一一对应")
		assert.Equal(t, assignment.Handles[i], assignment.HandleOf(id))
	}

	// assignment ID由(epoch, seed)决定
	again, err := MakeAssignment(7, seed, pool, 7)
	require.NoError(t, err)
	assert.Equal(t, assignment.ID, again.ID)
}
