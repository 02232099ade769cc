package epoch

import (
	"errors"
	"sync"
	"time"

	"github.com/tendermint/tendermint/libs/service"

	"highcourt/config"
	"highcourt/selection"
	"highcourt/store"
	"highcourt/types"
)

// PoolSource - 抽签需要的eligible pool快照，由registry实现
type PoolSource interface {
	SnapshotEligiblePool() []types.NodeID
}

// Scheduler 周期性地draw新的epoch和陪审团名单
// draw失败（种子未更新/pool不足）直接跳过本轮，在下一个tick重试，
// 不会产生半成品epoch
type Scheduler struct {
	service.BaseService

	config   *config.SelectionConfig
	provider *Provider
	pool     PoolSource
	store    store.Store

	mtx    sync.RWMutex
	seq    int64
	latest *types.JurorAssignment

	quit chan struct{}
}

func NewScheduler(cfg *config.SelectionConfig, provider *Provider, pool PoolSource, st store.Store) *Scheduler {
	s := &Scheduler{
		config:   cfg,
		provider: provider,
		pool:     pool,
		store:    st,
		quit:     make(chan struct{}),
	}
	s.BaseService = *service.NewBaseService(nil, "EPOCH", s)
	return s
}

func (s *Scheduler) OnStart() error {
	if seq, err := s.store.LatestEpochSeq(); err == nil {
		s.seq = seq
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	// 启动时先尝试draw一次，失败留给ticker重试
	if err := s.DrawOnce(); err != nil {
		s.Logger.Info("initial draw skipped", "err", err)
	}

	go s.tickRoutine()
	return nil
}

func (s *Scheduler) OnStop() {
	close(s.quit)
}

func (s *Scheduler) tickRoutine() {
	ticker := time.NewTicker(s.config.EpochInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			if err := s.DrawOnce(); err != nil {
				// SeedUnavailable和pool不足都是正常情况，下个tick再试
				s.Logger.Info("epoch draw skipped", "err", err)
			}
		}
	}
}

// DrawOnce performs a single epoch draw:
// seed → frozen pool snapshot → deterministic panel → persist.
func (s *Scheduler) DrawOnce() error {
	seed, provenance, err := s.provider.CurrentSeed()
	if err != nil {
		return err
	}

	// 快照只取一次，draw过程中不再回查registry
	pool := s.pool.SnapshotEligiblePool()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	seq := s.seq + 1
	assignment, err := selection.MakeAssignment(seq, seed, pool, s.config.PanelSize)
	if err != nil {
		return err
	}

	epoch := &types.Epoch{
		Seq:              seq,
		Seed:             seed,
		Provenance:       provenance,
		EligibleSnapshot: pool,
		DrawnAt:          time.Now(),
	}

	if err := s.store.SaveEpoch(epoch); err != nil {
		return err
	}
	if err := s.store.SaveAssignment(assignment); err != nil {
		return err
	}

	s.seq = seq
	s.latest = assignment
	s.provider.Commit(provenance.Height)

	s.Logger.Info("epoch drawn",
		"seq", seq,
		"beacon_height", provenance.Height,
		"pool_size", len(pool),
		"assignment", assignment.ID)
	return nil
}

// LatestAssignment returns the panel of the current epoch.
// 新dispute一律使用最新assignment；旧epoch的assignment不可变，
// 仍在tally中的旧案件不受新draw影响
func (s *Scheduler) LatestAssignment() (*types.JurorAssignment, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.latest == nil {
		return nil, ErrNoAssignment
	}
	return s.latest, nil
}

// CurrentSeq returns the sequence number of the newest epoch.
func (s *Scheduler) CurrentSeq() int64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.seq
}
