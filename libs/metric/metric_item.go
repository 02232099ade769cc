package metric

// MetricItem - 一个子系统的计数器集合
// JSONString返回当前计数的JSON快照，实现方自己负责并发安全
type MetricItem interface {
	JSONString() string
}

// staticItem 固定内容的item，测试用
type staticItem struct {
	body string
}

func (s *staticItem) JSONString() string {
	return s.body
}
