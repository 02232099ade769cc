package selection

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/tendermint/tendermint/crypto/tmhash"

	"highcourt/types"
)

// SelectJurors 从eligible pool中确定性地抽取panelSize个juror
//
// 算法：以epoch seed为HMAC-SHA256的key，对每个候选人的NodeID打分，
// 按分值升序得到一个带密钥的伪随机排列，取前panelSize个。
// 同样的(seed, pool)永远产生同样的有序名单，第三方可独立复算核验。
func SelectJurors(seed []byte, pool []types.NodeID, panelSize int) ([]types.NodeID, error) {
	if panelSize <= 0 {
		return nil, fmt.Errorf("invalid panel size %d", panelSize)
	}
	if len(pool) < panelSize {
		return nil, ErrInsufficientCandidatePool
	}

	type scored struct {
		id    types.NodeID
		score string
	}

	ranked := make([]scored, 0, len(pool))
	for _, id := range pool {
		ranked = append(ranked, scored{id: id, score: vrfScore(seed, id)})
	}

	// pool是集合，score极小概率相撞；撞了按NodeID稳定排序兜底
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	panel := make([]types.NodeID, panelSize)
	for i := 0; i < panelSize; i++ {
		panel[i] = ranked[i].id
	}
	return panel, nil
}

// vrfScore - 候选人的确定性优先级，seed公开后任何人都可复验
func vrfScore(seed []byte, id types.NodeID) string {
	mac := hmac.New(sha256.New, seed)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// BlindHandle derives the anonymous dispute-facing handle for a juror.
// 映射只保存在服务端，投票接口永远不暴露底层NodeID
func BlindHandle(seed []byte, id types.NodeID) string {
	mac := hmac.New(sha256.New, seed)
	mac.Write([]byte("handle:"))
	mac.Write([]byte(id))
	return "JUROR_" + hex.EncodeToString(mac.Sum(nil))[:16]
}

// MakeAssignment draws a full panel and packages it with blinded handles.
func MakeAssignment(epochSeq int64, seed []byte, pool []types.NodeID, panelSize int) (*types.JurorAssignment, error) {
	jurors, err := SelectJurors(seed, pool, panelSize)
	if err != nil {
		return nil, err
	}

	handles := make([]string, len(jurors))
	for i, id := range jurors {
		handles[i] = BlindHandle(seed, id)
	}

	return &types.JurorAssignment{
		ID:      assignmentID(epochSeq, seed),
		Epoch:   epochSeq,
		Jurors:  jurors,
		Handles: handles,
		Seed:    seed,
	}, nil
}

func assignmentID(epochSeq int64, seed []byte) string {
	h := tmhash.Sum(append([]byte(fmt.Sprintf("assignment/%d/", epochSeq)), seed...))
	return fmt.Sprintf("ASGN-%d-%X", epochSeq, h[:6])
}
