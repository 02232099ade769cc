package epoch

import (
	"fmt"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tm-db/memdb"

	"highcourt/beacon"
	"highcourt/config"
	"highcourt/selection"
	"highcourt/store"
	"highcourt/types"
)

// ----- utility func -----

type fixedPool []types.NodeID

func (fp fixedPool) SnapshotEligiblePool() []types.NodeID {
	return append([]types.NodeID{}, fp...)
}

func makeFixedPool(count int) fixedPool {
	pool := make(fixedPool, count)
	for i := 0; i < count; i++ {
		pool[i] = types.NodeID(fmt.Sprintf("NODE_%04d", i))
	}
	return pool
}

func newTestScheduler(pool fixedPool) (*Scheduler, *beacon.MockBeacon, store.Store) {
	mock := beacon.NewMockBeacon()
	st := store.NewKVStoreWithDB(memdb.NewDB(), log.TestingLogger())

	cfg := config.TestConfig().Selection
	cfg.PanelSize = 7

	s := NewScheduler(cfg, NewProvider(mock, "mock-beacon"), pool, st)
	s.SetLogger(log.TestingLogger())
	return s, mock, st
}

// ----- tests -----

func TestProviderSeedFreshness(t *testing.T) {
	mock := beacon.NewMockBeacon()
	p := NewProvider(mock, "mock-beacon")

	// beacon还没有任何高度
	_, _, err := p.CurrentSeed()
	assert.ErrorIs(t, err, ErrSeedUnavailable)

	height := mock.Advance([]byte("seed-1"))
	seed, provenance, err := p.CurrentSeed()
	require.NoError(t, err)
	assert.EqualValues(t, []byte("seed-1"), seed)
	assert.Equal(t, types.SeedProvenance{Source: "mock-beacon", Height: height}, provenance)

	// 同一个高度commit之后不允许再次使用
	p.Commit(height)
	_, _, err = p.CurrentSeed()
	assert.ErrorIs(t, err, ErrSeedUnavailable)

	mock.Advance([]byte("seed-2"))
	_, _, err = p.CurrentSeed()
	assert.NoError(t, err)
}

func TestDrawOnce(t *testing.T) {
	s, mock, st := newTestScheduler(makeFixedPool(12))

	// 没有assignment之前查询要报错
	_, err := s.LatestAssignment()
	assert.ErrorIs(t, err, ErrNoAssignment)

	mock.Advance([]byte("seed-1"))
	require.NoError(t, s.DrawOnce())
	assert.EqualValues(t, 1, s.CurrentSeq())

	assignment, err := s.LatestAssignment()
	require.NoError(t, err)
	assert.Equal(t, 7, assignment.PanelSize())

	// 种子没推进时重复draw被拒绝，防止seed重用
	assert.ErrorIs(t, s.DrawOnce(), ErrSeedUnavailable)

	// epoch和assignment都已落盘
	epoch, err := st.LoadEpoch(1)
	require.NoError(t, err)
	assert.Len(t, epoch.EligibleSnapshot, 12)
	stored, err := st.LoadAssignment(assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.Jurors, stored.Jurors)
}

func TestDrawOnceReproducible(t *testing.T) {
	pool := makeFixedPool(12)
	s, mock, _ := newTestScheduler(pool)

	mock.Advance([]byte("seed-42"))
	require.NoError(t, s.DrawOnce())
	assignment, err := s.LatestAssignment()
	require.NoError(t, err)

	// 任何第三方拿到seed和snapshot都可以独立复算名单
	recomputed, err := selection.MakeAssignment(1, []byte("seed-42"), pool, 7)
	require.NoError(t, err)
	assert.Equal(t, recomputed.Jurors, assignment.Jurors)
	assert.Equal(t, recomputed.ID, assignment.ID)
}

func TestDrawOnceNewSeedNewPanel(t *testing.T) {
	s, mock, _ := newTestScheduler(makeFixedPool(40))

	mock.Advance([]byte("seed-a"))
	require.NoError(t, s.DrawOnce())
	first, _ := s.LatestAssignment()

	mock.Advance([]byte("seed-b"))
	require.NoError(t, s.DrawOnce())
	second, _ := s.LatestAssignment()

	assert.EqualValues(t, 2, s.CurrentSeq())
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Jurors, second.Jurors, "新seed应该换出不同的panel")
}

func TestDrawOnceInsufficientPool(t *testing.T) {
	s, mock, _ := newTestScheduler(makeFixedPool(3))

	mock.Advance([]byte("seed-1"))
	err := s.DrawOnce()
	assert.ErrorIs(t, err, selection.ErrInsufficientCandidatePool)
	assert.EqualValues(t, 0, s.CurrentSeq(), "draw失败不产生半成品epoch")
}

func TestSchedulerStartStop(t *testing.T) {
	defer leaktest.CheckTimeout(t, 500*time.Millisecond)()

	s, mock, _ := newTestScheduler(makeFixedPool(12))
	mock.Advance([]byte("seed-1"))

	require.NoError(t, s.Start())
	_, err := s.LatestAssignment()
	assert.NoError(t, err, "启动时应完成首次draw")

	require.NoError(t, s.Stop())
}
