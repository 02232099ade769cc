package epoch

import "errors"

var (
	// ErrSeedUnavailable - beacon自上一个epoch后没有推进，种子不能复用
	// 是否等待由caller决定，这里不持有重试策略
	ErrSeedUnavailable = errors.New("beacon has not advanced since last epoch")

	// ErrNoAssignment is returned before the first successful draw.
	ErrNoAssignment = errors.New("no juror assignment available")
)
