package types

import (
	"errors"
	"time"

	tmjson "github.com/tendermint/tendermint/libs/json"
)

type PayoutStatus uint8

const (
	PayoutNone    = PayoutStatus(0) // 该settlement不涉及资金移动
	PayoutSettled = PayoutStatus(1)
	PayoutPending = PayoutStatus(2)
	PayoutFailed  = PayoutStatus(3)
)

func (s PayoutStatus) String() string {
	switch s {
	case PayoutNone:
		return "NONE"
	case PayoutSettled:
		return "SETTLED"
	case PayoutPending:
		return "PAYOUT_PENDING"
	case PayoutFailed:
		return "PAYOUT_FAILED"
	default:
		return "UnknownPayoutStatus"
	}
}

// JurorDelta - settlement对单个陪审员的经济调整
type JurorDelta struct {
	JurorID  NodeID `json:"juror_id"`
	RepDelta int64  `json:"rep_delta"`
	BondDelta int64 `json:"bond_delta"`
	Reason   string `json:"reason"` // "dissent" | "no_response" | "majority_reward"
}

// SettlementRecord - 一个finalized dispute对应且仅对应一条记录
// 写入store后不可变，重放settle必须返回字节一致的同一条记录
type SettlementRecord struct {
	DisputeID string  `json:"dispute_id"`
	Outcome   Outcome `json:"outcome"`

	SubjectRepDelta  int64 `json:"subject_rep_delta"`
	SubjectBondDelta int64 `json:"subject_bond_delta"`

	JurorDeltas  []JurorDelta `json:"juror_deltas"`
	TreasuryBurn int64        `json:"treasury_burn"`

	PayoutRef    string       `json:"payout_ref,omitempty"`
	PayoutStatus PayoutStatus `json:"payout_status"`

	CreatedAt time.Time `json:"created_at"`
}

func (sr *SettlementRecord) ValidateBasic() error {
	if sr == nil {
		return errors.New("nil settlement record")
	}
	if sr.DisputeID == "" {
		return errors.New("settlement without dispute id")
	}
	if sr.Outcome == OutcomeNone {
		return errors.New("settlement without outcome")
	}
	return nil
}

// Bytes - 审计用的标准编码，幂等性比较以此为准
func (sr *SettlementRecord) Bytes() []byte {
	bz, err := tmjson.Marshal(sr)
	if err != nil {
		panic(err)
	}
	return bz
}
