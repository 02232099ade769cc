package metric

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrMetricLabelExist = errors.New("metric label already exist")
)

// MetricSet 按label汇集各子系统的MetricItem
// label注册后不可覆盖，dispute/settlement各占一个
type MetricSet struct {
	mtx     sync.RWMutex
	metrics map[string]MetricItem
}

func NewMetricSet() *MetricSet {
	return &MetricSet{
		metrics: make(map[string]MetricItem),
	}
}

func (ms *MetricSet) SetMetrics(label string, item MetricItem) error {
	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	if _, ok := ms.metrics[label]; ok {
		return ErrMetricLabelExist
	}
	ms.metrics[label] = item
	return nil
}

func (ms *MetricSet) HasMetrics(label string) bool {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	_, ok := ms.metrics[label]
	return ok
}

func (ms *MetricSet) GetMetrics(label string) MetricItem {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	return ms.metrics[label]
}

// GetAllLabels 返回排序后的label列表，保证快照输出稳定
func (ms *MetricSet) GetAllLabels() []string {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	labels := make([]string, 0, len(ms.metrics))
	for label := range ms.metrics {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Snapshot 对全部子系统取一次快照，label → JSON串
func (ms *MetricSet) Snapshot() map[string]string {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	snap := make(map[string]string, len(ms.metrics))
	for label, item := range ms.metrics {
		snap[label] = item.JSONString()
	}
	return snap
}
