package types

import (
	"errors"
	"fmt"
	"time"

	tmbytes "github.com/tendermint/tendermint/libs/bytes"
)

// SeedProvenance 记录种子的来源，审计时用于核验选取结果
type SeedProvenance struct {
	Source string `json:"source"` // beacon的标识，如"block-hash-feed"
	Height int64  `json:"height"` // beacon对应的高度
}

// Epoch - 一次抽签周期
// EligibleSnapshot在draw时刻冻结，此后不再更新，保证抽签可复现
type Epoch struct {
	Seq        int64            `json:"seq"`
	Seed       tmbytes.HexBytes `json:"seed"`
	Provenance SeedProvenance   `json:"provenance"`

	EligibleSnapshot []NodeID  `json:"eligible_snapshot"`
	DrawnAt          time.Time `json:"drawn_at"`
}

func (e *Epoch) ValidateBasic() error {
	if e == nil {
		return errors.New("nil epoch")
	}
	if len(e.Seed) == 0 {
		return errors.New("epoch without seed")
	}
	if len(e.EligibleSnapshot) == 0 {
		return errors.New("epoch without eligible snapshot")
	}
	return nil
}

// JurorAssignment - 一个epoch内有效的陪审团名单
// Jurors顺序即抽签顺序；Handles与Jurors一一对应，
// 对外接口只暴露handle，真实NodeID不出引擎
type JurorAssignment struct {
	ID      string           `json:"id"`
	Epoch   int64            `json:"epoch"`
	Jurors  []NodeID         `json:"jurors"`
	Handles []string         `json:"handles"`
	Seed    tmbytes.HexBytes `json:"seed"`
}

func (ja *JurorAssignment) ValidateBasic() error {
	if ja == nil {
		return errors.New("nil juror assignment")
	}
	if len(ja.Jurors) == 0 {
		return errors.New("empty juror panel")
	}
	if len(ja.Jurors) != len(ja.Handles) {
		return fmt.Errorf("jurors/handles length mismatch: %d vs %d", len(ja.Jurors), len(ja.Handles))
	}
	seen := make(map[NodeID]struct{}, len(ja.Jurors))
	for _, id := range ja.Jurors {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate juror %v", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// IsMember 判断节点是否在陪审团中
func (ja *JurorAssignment) IsMember(id NodeID) bool {
	for _, j := range ja.Jurors {
		if j == id {
			return true
		}
	}
	return false
}

// HandleOf 返回juror的匿名handle，不在名单内返回空串
func (ja *JurorAssignment) HandleOf(id NodeID) string {
	for i, j := range ja.Jurors {
		if j == id {
			return ja.Handles[i]
		}
	}
	return ""
}

// PanelSize returns the number of seats on the panel.
func (ja *JurorAssignment) PanelSize() int {
	return len(ja.Jurors)
}
