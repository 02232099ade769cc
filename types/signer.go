package types

import (
	"github.com/tendermint/tendermint/crypto"

	"highcourt/crypto/bls"
)

// JurorSigner 为选票生成硬件签名的抽象
// 生产环境由硬件守护进程实现，引擎内只有文件版和测试版
type JurorSigner interface {
	GetPubKey() (crypto.PubKey, error)
	SignVote(engineID string, vote *Vote) error
}

//----------------------------------------
// MockSigner

// MockSigner implements JurorSigner with an in-memory key, useful for testing.
type MockSigner struct {
	PrivKey crypto.PrivKey
}

func NewMockSigner() *MockSigner {
	return &MockSigner{PrivKey: bls.GenPrivKey()}
}

func NewMockSignerWithKey(priv crypto.PrivKey) *MockSigner {
	return &MockSigner{PrivKey: priv}
}

func (ms *MockSigner) GetPubKey() (crypto.PubKey, error) {
	return ms.PrivKey.PubKey(), nil
}

func (ms *MockSigner) NodeID() NodeID {
	return NodeIDFromPubKey(ms.PrivKey.PubKey())
}

func (ms *MockSigner) SignVote(engineID string, vote *Vote) error {
	sig, err := ms.PrivKey.Sign(VoteSignBytes(engineID, vote))
	if err != nil {
		return err
	}
	vote.Signature = sig
	return nil
}
