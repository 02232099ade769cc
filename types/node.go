package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/tmhash"
)

const (
	// 声誉分的取值范围，deltas超过范围一律截断
	MinReputation = int64(0)
	MaxReputation = int64(1000)
)

type NodeStatus uint8

const (
	NodeActive      = NodeStatus(1)
	NodeQuarantined = NodeStatus(2)
	NodeBanned      = NodeStatus(3)
)

func (s NodeStatus) String() string {
	switch s {
	case NodeActive:
		return "ACTIVE"
	case NodeQuarantined:
		return "QUARANTINED"
	case NodeBanned:
		return "BANNED"
	default:
		return "UnknownStatus"
	}
}

// NodeID - 节点在协议内的唯一标识，由节点身份公钥推导
type NodeID string

// NodeIDFromPubKey 根据身份公钥生成节点ID
func NodeIDFromPubKey(pub crypto.PubKey) NodeID {
	h := tmhash.Sum(pub.Bytes())
	return NodeID("NODE_" + strings.ToUpper(fmt.Sprintf("%x", h[:8])))
}

// Node - 候选人注册表的一条记录
// Reputation/Bond/Status只允许由settlement executor和appeal状态机修改
type Node struct {
	ID         NodeID        `json:"id"`
	PubKey     crypto.PubKey `json:"pub_key"`
	Reputation int64         `json:"reputation"`
	Bond       int64         `json:"bond"`
	Status     NodeStatus    `json:"status"`
}

func NewNode(pub crypto.PubKey, reputation, bond int64) *Node {
	return &Node{
		ID:         NodeIDFromPubKey(pub),
		PubKey:     pub,
		Reputation: reputation,
		Bond:       bond,
		Status:     NodeActive,
	}
}

func (n *Node) ValidateBasic() error {
	if n == nil {
		return errors.New("nil node")
	}
	if n.PubKey == nil {
		return errors.New("node does not have a public key")
	}
	if n.ID != NodeIDFromPubKey(n.PubKey) {
		return fmt.Errorf("node id %v does not match public key", n.ID)
	}
	if n.Reputation < MinReputation || n.Reputation > MaxReputation {
		return fmt.Errorf("reputation %v out of range [%v, %v]", n.Reputation, MinReputation, MaxReputation)
	}
	if n.Bond < 0 {
		return fmt.Errorf("negative bond: %v", n.Bond)
	}
	return nil
}

// Copy - 对外暴露node前先copy，防止caller绕过registry修改
func (n *Node) Copy() *Node {
	nCopy := *n
	return &nCopy
}

func (n *Node) String() string {
	if n == nil {
		return "nil-Node"
	}
	return fmt.Sprintf("Node{%v rep=%v bond=%v %v}", n.ID, n.Reputation, n.Bond, n.Status)
}

// ClampReputation 将声誉值截断到合法区间
func ClampReputation(rep int64) int64 {
	if rep < MinReputation {
		return MinReputation
	}
	if rep > MaxReputation {
		return MaxReputation
	}
	return rep
}

// FloorBond bond永远不会为负
func FloorBond(bond int64) int64 {
	if bond < 0 {
		return 0
	}
	return bond
}
