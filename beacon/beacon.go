package beacon

import (
	"sync"
	"time"

	"github.com/tendermint/tendermint/crypto/tmhash"
)

// Beacon 公开可验证的随机源，对应外部的block-hash feed
// 引擎只消费(seed, height)，不关心来源细节
type Beacon interface {
	LatestSeed() (seed []byte, height int64, err error)
}

//----------------------------------------
// LocalBeacon

// LocalBeacon - 本地hash链，每个interval推进一个高度
// 开发部署用，生产环境换成真实的链上feed
type LocalBeacon struct {
	genesis  []byte
	start    time.Time
	interval time.Duration
}

var _ Beacon = (*LocalBeacon)(nil)

func NewLocalBeacon(genesis []byte, interval time.Duration) *LocalBeacon {
	return &LocalBeacon{
		genesis:  genesis,
		start:    time.Now(),
		interval: interval,
	}
}

func (b *LocalBeacon) LatestSeed() ([]byte, int64, error) {
	height := int64(time.Since(b.start)/b.interval) + 1
	return b.seedAt(height), height, nil
}

func (b *LocalBeacon) seedAt(height int64) []byte {
	seed := b.genesis
	for i := int64(0); i < height; i++ {
		seed = tmhash.Sum(seed)
	}
	return seed
}

//----------------------------------------
// MockBeacon

// MockBeacon implements Beacon with manually advanced heights, for testing.
type MockBeacon struct {
	mtx    sync.Mutex
	seed   []byte
	height int64
	err    error
}

var _ Beacon = (*MockBeacon)(nil)

func NewMockBeacon() *MockBeacon {
	return &MockBeacon{}
}

// Advance publishes a new seed at the next height.
func (b *MockBeacon) Advance(seed []byte) int64 {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.height++
	b.seed = seed
	return b.height
}

// Fail makes subsequent LatestSeed calls return err.
func (b *MockBeacon) Fail(err error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.err = err
}

func (b *MockBeacon) LatestSeed() ([]byte, int64, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.err != nil {
		return nil, 0, b.err
	}
	return b.seed, b.height, nil
}
