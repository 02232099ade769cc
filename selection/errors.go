package selection

import "errors"

var (
	// ErrInsufficientCandidatePool is returned when the eligible pool cannot
	// fill a full panel; the epoch is skipped, never under-filled.
	ErrInsufficientCandidatePool = errors.New("eligible pool smaller than panel size")
)
