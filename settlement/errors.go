package settlement

import "errors"

var (
	ErrNotFinalized = errors.New("dispute is not finalized")

	// ErrNoQuorumOutcome - NO_QUORUM不产生自动清算，案件走人工复核
	ErrNoQuorumOutcome = errors.New("no-quorum outcome is not settleable")
)
