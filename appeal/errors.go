package appeal

import "errors"

var (
	ErrUnknownAppeal = errors.New("unknown appeal")
	ErrAppealExists  = errors.New("an appeal for this node is already in flight")
	// 只有QUARANTINED的节点才有申诉资格
	ErrNotQuarantined = errors.New("node is not quarantined")
	ErrMissingDeposit = errors.New("appeal deposit reference required")
	// attestation失败或nonce过期，节点保持QUARANTINED
	ErrAttestationFailure = errors.New("attestation failure")
	ErrStaleNonce         = errors.New("attestation nonce expired")
	ErrWrongState         = errors.New("operation not allowed in current appeal state")
)
