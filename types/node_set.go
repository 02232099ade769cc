// fork from the tendermint validator_set layout
package types

import (
	"errors"
	"fmt"
	"sort"
)

// NodeSet represent an ordered set of *Node.
//
// Nodes can be fetched by id or index; the ordering is by id (ascending) so
// that a snapshot taken from the same registry content is always identical -
// juror draws depend on this for reproducibility.
//
// NOTE: Not goroutine-safe.
// NOTE: All get to nodes should copy the value for safety.
type NodeSet struct {
	Nodes []*Node `json:"nodes"`
}

// NewNodeSet initializes a NodeSet by copying over the values from `nodes`.
// The ids in `nodes` must be unique otherwise the function panics.
func NewNodeSet(nodes []*Node) *NodeSet {
	ns := &NodeSet{}
	ns.Nodes = make([]*Node, 0, len(nodes))

	seen := make(map[NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.ID]; ok {
			panic(fmt.Sprintf("duplicate node id %v", n.ID))
		}
		seen[n.ID] = struct{}{}
		ns.Nodes = append(ns.Nodes, n.Copy())
	}
	sort.Slice(ns.Nodes, func(i, j int) bool { return ns.Nodes[i].ID < ns.Nodes[j].ID })

	return ns
}

func (ns *NodeSet) ValidateBasic() error {
	if ns.IsNilOrEmpty() {
		return errors.New("node set is nil or empty")
	}

	for idx, n := range ns.Nodes {
		if err := n.ValidateBasic(); err != nil {
			return fmt.Errorf("invalid node #%d: %w", idx, err)
		}
	}

	return nil
}

// IsNilOrEmpty returns true if node set is nil or empty.
func (ns *NodeSet) IsNilOrEmpty() bool {
	return ns == nil || len(ns.Nodes) == 0
}

// Copy each node into a new NodeSet.
func (ns *NodeSet) Copy() *NodeSet {
	nodesCopy := make([]*Node, len(ns.Nodes))
	for i, n := range ns.Nodes {
		nodesCopy[i] = n.Copy()
	}
	return &NodeSet{Nodes: nodesCopy}
}

// HasID returns true if the id is in the set.
func (ns *NodeSet) HasID(id NodeID) bool {
	for _, n := range ns.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// GetByID returns an index of the node with the given id and the node itself
// (copy) if found. Otherwise, -1 and nil are returned.
func (ns *NodeSet) GetByID(id NodeID) (index int32, node *Node) {
	for idx, n := range ns.Nodes {
		if n.ID == id {
			return int32(idx), n.Copy()
		}
	}
	return -1, nil
}

// GetByIndex returns the node (copy) by index.
// It returns nil if index is out of range.
func (ns *NodeSet) GetByIndex(index int32) *Node {
	if index < 0 || int(index) >= len(ns.Nodes) {
		return nil
	}
	return ns.Nodes[index].Copy()
}

// Size returns the length of the node set.
func (ns *NodeSet) Size() int {
	return len(ns.Nodes)
}

// IDs returns the ordered ids of the set.
func (ns *NodeSet) IDs() []NodeID {
	ids := make([]NodeID, len(ns.Nodes))
	for i, n := range ns.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Iterate will run the given function over the set.
func (ns *NodeSet) Iterate(fn func(index int, node *Node) bool) {
	for i, n := range ns.Nodes {
		stop := fn(i, n.Copy())
		if stop {
			break
		}
	}
}
