package tally

import (
	"fmt"

	"github.com/tendermint/tendermint/crypto"

	"highcourt/crypto/bls"
	"highcourt/types"
)

// KeyLookup 查询陪审员身份公钥，由registry实现
type KeyLookup interface {
	Get(id types.NodeID) (*types.Node, error)
}

// Result - 一次tally的完整结果
type Result struct {
	Outcome  types.Outcome
	Received int
	Counts   map[types.Verdict]int
	// Majority - outcome为NO_QUORUM时为空
	Majority []*types.Vote
	Minority []*types.Vote
}

// Resolve computes the Schelling-point verdict over the votes actually cast.
//
// 不足quorumMin张有效票 → NO_QUORUM，转人工复核，少数派自动裁决被禁止；
// 平票（偶数quorum配置下可能出现）同样是NO_QUORUM，绝不偏向任何一方
func Resolve(votes []*types.Vote, quorumMin int) Result {
	result := Result{
		Received: len(votes),
		Counts:   make(map[types.Verdict]int),
	}
	for _, v := range votes {
		result.Counts[v.Verdict]++
	}

	if len(votes) < quorumMin {
		result.Outcome = types.OutcomeNoQuorum
		return result
	}

	restore := result.Counts[types.RestoreVerdict]
	ban := result.Counts[types.BanVerdict]
	if restore == ban {
		result.Outcome = types.OutcomeNoQuorum
		return result
	}

	majority := types.RestoreVerdict
	if ban > restore {
		majority = types.BanVerdict
	}
	result.Outcome = types.OutcomeFromVerdict(majority)

	for _, v := range votes {
		if v.Verdict == majority {
			result.Majority = append(result.Majority, v)
		} else {
			result.Minority = append(result.Minority, v)
		}
	}
	return result
}

//----------------------------------------
// Resolver

// Resolver binds the resolve rule to the engine's configuration and builds
// the finality certificate on top of the raw outcome.
type Resolver struct {
	engineID  string
	quorumMin int
	keys      KeyLookup
}

func NewResolver(engineID string, quorumMin int, keys KeyLookup) *Resolver {
	return &Resolver{
		engineID:  engineID,
		quorumMin: quorumMin,
		keys:      keys,
	}
}

// Resolve applies the configured quorum minimum.
func (r *Resolver) Resolve(votes []*types.Vote) Result {
	return Resolve(votes, r.quorumMin)
}

// Certificate 将多数派选票的BLS签名压缩成一个可独立核验的聚合签名
// NO_QUORUM没有多数派，返回nil
func (r *Resolver) Certificate(result Result) ([]byte, error) {
	if result.Outcome == types.OutcomeNoQuorum || len(result.Majority) == 0 {
		return nil, nil
	}

	sigs := make([][]byte, len(result.Majority))
	msgs := make([][]byte, len(result.Majority))
	pubs := make([]crypto.PubKey, len(result.Majority))
	for i, v := range result.Majority {
		node, err := r.keys.Get(v.JurorID)
		if err != nil {
			return nil, fmt.Errorf("juror %v: %w", v.JurorID, err)
		}
		sigs[i] = v.Signature
		msgs[i] = types.VoteSignBytes(r.engineID, v)
		pubs[i] = node.PubKey
	}

	aggregated, err := bls.AggregateSignatures(sigs...)
	if err != nil {
		return nil, fmt.Errorf("aggregate vote signatures: %w", err)
	}

	// 聚合后立刻自检，坏证书宁可不出
	if err := bls.BatchVerify(pubs, msgs, aggregated); err != nil {
		return nil, fmt.Errorf("certificate self-check failed: %w", err)
	}
	return aggregated, nil
}
