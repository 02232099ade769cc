package types

import (
	"errors"
	"fmt"
	"time"

	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmjson "github.com/tendermint/tendermint/libs/json"
)

type Verdict uint8

const (
	RestoreVerdict = Verdict(1)
	BanVerdict     = Verdict(2)
)

func (v Verdict) String() string {
	switch v {
	case RestoreVerdict:
		return "RESTORE"
	case BanVerdict:
		return "BAN"
	default:
		return "UnknownVerdict"
	}
}

func (v Verdict) Valid() bool {
	return v == RestoreVerdict || v == BanVerdict
}

// VerdictFromString 解析rpc参数里的verdict字面量
func VerdictFromString(s string) (Verdict, error) {
	switch s {
	case "RESTORE":
		return RestoreVerdict, nil
	case "BAN":
		return BanVerdict, nil
	default:
		return Verdict(0), fmt.Errorf("unknown verdict %q", s)
	}
}

type Outcome uint8

const (
	OutcomeNone     = Outcome(0)
	OutcomeRestore  = Outcome(1)
	OutcomeBan      = Outcome(2)
	OutcomeNoQuorum = Outcome(3)
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "NONE"
	case OutcomeRestore:
		return "RESTORE"
	case OutcomeBan:
		return "BAN"
	case OutcomeNoQuorum:
		return "NO_QUORUM"
	default:
		return "UnknownOutcome"
	}
}

// Adverse - 裁决结果是否对subject不利，settlement据此决定是否slash
func (o Outcome) Adverse() bool {
	return o == OutcomeBan
}

// OutcomeFromVerdict 将多数派verdict映射成dispute的outcome
func OutcomeFromVerdict(v Verdict) Outcome {
	switch v {
	case RestoreVerdict:
		return OutcomeRestore
	case BanVerdict:
		return OutcomeBan
	default:
		return OutcomeNone
	}
}

// Vote - 陪审员针对某个dispute的单张选票，一个juror在一个dispute只能投一票
// 一旦被接收便不可变更
type Vote struct {
	DisputeID   string           `json:"dispute_id"`
	JurorID     NodeID           `json:"juror_id"`
	Verdict     Verdict          `json:"verdict"`
	Signature   tmbytes.HexBytes `json:"signature"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

func (v *Vote) ValidateBasic() error {
	if v == nil {
		return errors.New("nil vote")
	}
	if v.DisputeID == "" {
		return errors.New("vote without dispute id")
	}
	if v.JurorID == "" {
		return errors.New("vote without juror id")
	}
	if !v.Verdict.Valid() {
		return fmt.Errorf("invalid verdict: %v", uint8(v.Verdict))
	}
	if len(v.Signature) == 0 {
		return errors.New("vote without signature")
	}
	return nil
}

func (v *Vote) String() string {
	if v == nil {
		return "nil-Vote"
	}
	return fmt.Sprintf("Vote{%v %v %v}", v.DisputeID, v.JurorID, v.Verdict)
}

// canonicalVote - 投票签名的标准载荷，不包含signature和本地时间戳
type canonicalVote struct {
	EngineID  string `json:"engine_id"`
	DisputeID string `json:"dispute_id"`
	JurorID   NodeID `json:"juror_id"`
	Verdict   uint8  `json:"verdict"`
}

// VoteSignBytes returns the canonical bytes a juror signs (and the
// attestation verifier checks) for the given vote.
func VoteSignBytes(engineID string, vote *Vote) []byte {
	bz, err := tmjson.Marshal(canonicalVote{
		EngineID:  engineID,
		DisputeID: vote.DisputeID,
		JurorID:   vote.JurorID,
		Verdict:   uint8(vote.Verdict),
	})
	if err != nil {
		panic(err)
	}
	return bz
}
