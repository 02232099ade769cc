package epoch

import (
	"sync"

	"highcourt/beacon"
	"highcourt/types"
)

// Provider wraps the randomness beacon and enforces seed freshness:
// 同一个beacon高度只允许draw一次
type Provider struct {
	mtx        sync.Mutex
	beacon     beacon.Beacon
	source     string
	lastHeight int64
}

func NewProvider(b beacon.Beacon, source string) *Provider {
	return &Provider{
		beacon: b,
		source: source,
	}
}

// CurrentSeed returns the freshest unused seed and its provenance.
// beacon没有推进时返回ErrSeedUnavailable，调用方在下个tick重试
func (p *Provider) CurrentSeed() ([]byte, types.SeedProvenance, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	seed, height, err := p.beacon.LatestSeed()
	if err != nil {
		return nil, types.SeedProvenance{}, err
	}
	if height <= p.lastHeight {
		return nil, types.SeedProvenance{}, ErrSeedUnavailable
	}

	return seed, types.SeedProvenance{Source: p.source, Height: height}, nil
}

// Commit marks the given beacon height as consumed by a successful draw.
func (p *Provider) Commit(height int64) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if height > p.lastHeight {
		p.lastHeight = height
	}
}
