package registry

import (
	"sync"

	"github.com/tendermint/tendermint/libs/log"

	"highcourt/store"
	"highcourt/types"
)

// Registry - 候选人注册表
// 读多写少：抽签和投票校验只读，写入只来自settlement executor和appeal状态机
type Registry struct {
	mtx   sync.RWMutex
	nodes map[types.NodeID]*types.Node

	repThreshold  int64
	bondThreshold int64

	store  store.Store // nil表示纯内存模式（测试）
	logger log.Logger
}

type Option func(*Registry)

// WithStore 挂接持久化，注册和每次delta都会落盘
func WithStore(s store.Store) Option {
	return func(r *Registry) { r.store = s }
}

func NewRegistry(repThreshold, bondThreshold int64, logger log.Logger, options ...Option) *Registry {
	r := &Registry{
		nodes:         make(map[types.NodeID]*types.Node),
		repThreshold:  repThreshold,
		bondThreshold: bondThreshold,
		logger:        logger,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Load 从store恢复注册表
func (r *Registry) Load() error {
	if r.store == nil {
		return nil
	}
	nodes, err := r.store.LoadNodes()
	if err != nil {
		return err
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, n := range nodes {
		r.nodes[n.ID] = n
	}
	r.logger.Info("registry loaded", "nodes", len(nodes))
	return nil
}

// Register adds a new node to the registry.
func (r *Registry) Register(node *types.Node) error {
	if err := node.ValidateBasic(); err != nil {
		return err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.nodes[node.ID]; ok {
		return ErrNodeExists
	}
	r.nodes[node.ID] = node.Copy()
	return r.persist(r.nodes[node.ID])
}

// Get returns a copy of the node, or ErrUnknownNode.
func (r *Registry) Get(id types.NodeID) (*types.Node, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	node, ok := r.nodes[id]
	if !ok {
		return nil, ErrUnknownNode
	}
	return node.Copy(), nil
}

// Has returns whether the node is registered.
func (r *Registry) Has(id types.NodeID) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	_, ok := r.nodes[id]
	return ok
}

// IsEligible - 当选陪审员的资格判定
// 要求ACTIVE状态且声誉、bond都不低于配置阈值
func (r *Registry) IsEligible(id types.NodeID) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.isEligible(id)
}

func (r *Registry) isEligible(id types.NodeID) bool {
	node, ok := r.nodes[id]
	if !ok {
		return false
	}
	return node.Status == types.NodeActive &&
		node.Reputation >= r.repThreshold &&
		node.Bond >= r.bondThreshold
}

// SnapshotEligibleSet freezes the currently eligible nodes into an ordered
// NodeSet copy. 后续的draw只认这份快照，绝不中途回头查registry
func (r *Registry) SnapshotEligibleSet() *types.NodeSet {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	eligible := make([]*types.Node, 0, len(r.nodes))
	for id, node := range r.nodes {
		if r.isEligible(id) {
			eligible = append(eligible, node)
		}
	}
	return types.NewNodeSet(eligible)
}

// SnapshotEligiblePool returns the ordered ids of all currently eligible
// nodes.
func (r *Registry) SnapshotEligiblePool() []types.NodeID {
	return r.SnapshotEligibleSet().IDs()
}

// Size returns the number of registered nodes.
func (r *Registry) Size() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.nodes)
}

// ApplyDeltas 调整节点的声誉和bond
// 声誉截断到[0,1000]，bond下限为0 - 任何slash序列都不会打穿
func (r *Registry) ApplyDeltas(id types.NodeID, repDelta, bondDelta int64) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	node, ok := r.nodes[id]
	if !ok {
		return ErrUnknownNode
	}

	node.Reputation = types.ClampReputation(node.Reputation + repDelta)
	node.Bond = types.FloorBond(node.Bond + bondDelta)

	r.logger.Debug("applied deltas", "node", id, "rep", node.Reputation, "bond", node.Bond)
	return r.persist(node)
}

// SetStatus flips the lifecycle status of a node.
func (r *Registry) SetStatus(id types.NodeID, status types.NodeStatus) error {
	switch status {
	case types.NodeActive, types.NodeQuarantined, types.NodeBanned:
	default:
		return ErrInvalidStatus
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	node, ok := r.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	node.Status = status
	r.logger.Info("node status changed", "node", id, "status", status)
	return r.persist(node)
}

func (r *Registry) persist(node *types.Node) error {
	if r.store == nil {
		return nil
	}
	return r.store.SaveNode(node)
}
