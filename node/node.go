package node

import (
	"net/http"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"
	rpcserver "github.com/tendermint/tendermint/rpc/jsonrpc/server"

	"highcourt/appeal"
	"highcourt/attest"
	"highcourt/beacon"
	cfg "highcourt/config"
	"highcourt/dispute"
	"highcourt/epoch"
	"highcourt/libs/metric"
	"highcourt/payment"
	"highcourt/registry"
	"highcourt/rpc"
	"highcourt/settlement"
	"highcourt/store"
	"highcourt/tally"
)

type Provider func(*cfg.Config, log.Logger) (*Node, error)

// Node 把引擎的全部组件装配成一个可启动的进程
// 启动顺序：store已就绪 → epoch scheduler → dispute manager →
// appeal manager → payout retrier → rpc server；停止时逆序
type Node struct {
	service.BaseService

	config *cfg.Config

	// storage
	store    store.Store
	registry *registry.Registry

	// selection
	beacon    beacon.Beacon
	scheduler *epoch.Scheduler

	// adjudication
	disputes *dispute.Manager
	appeals  *appeal.Manager

	// settlement
	rail     payment.Rail
	executor *settlement.Executor
	retrier  *settlement.Retrier

	metricSet *metric.MetricSet

	rpcListeners []interface{ Close() error }
}

type Option func(*Node)

// WithBeacon 替换默认的本地beacon，接入真实的区块哈希feed
func WithBeacon(b beacon.Beacon) Option {
	return func(n *Node) { n.beacon = b }
}

// WithRail 替换默认的journal rail，接入真实的支付通道
func WithRail(r payment.Rail) Option {
	return func(n *Node) { n.rail = r }
}

func DefaultNewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	st, err := store.NewKVStore("highcourt", config.DBPath(), logger.With("module", "store"))
	if err != nil {
		return nil, err
	}
	return NewNode(config, st, logger)
}

func NewNode(config *cfg.Config, st store.Store, logger log.Logger, options ...Option) (*Node, error) {
	if err := config.ValidateBasic(); err != nil {
		return nil, err
	}

	node := &Node{
		config:    config,
		store:     st,
		metricSet: metric.NewMetricSet(),
	}
	for _, option := range options {
		option(node)
	}

	// registry跟store绑定，重启后可恢复全部节点
	node.registry = registry.NewRegistry(
		config.Selection.EligibilityReputation,
		config.Selection.EligibilityBond,
		logger.With("module", "registry"),
		registry.WithStore(st),
	)
	if err := node.registry.Load(); err != nil {
		return nil, err
	}

	if node.beacon == nil {
		node.beacon = beacon.NewLocalBeacon([]byte(config.EngineID), config.Selection.EpochInterval)
	}
	provider := epoch.NewProvider(node.beacon, "local-beacon")

	node.scheduler = epoch.NewScheduler(config.Selection, provider, node.registry, st)
	node.scheduler.SetLogger(logger.With("module", "epoch"))

	if node.rail == nil {
		node.rail = payment.NewJournalRail()
	}
	node.executor = settlement.NewExecutor(
		config.Settlement, node.registry, st, node.rail,
		logger.With("module", "settlement"),
	)
	node.retrier = settlement.NewRetrier(config.Settlement, st, node.rail, node.executor)
	node.retrier.SetLogger(logger.With("module", "settlement"))

	resolver := tally.NewResolver(config.EngineID, config.Dispute.QuorumMin, node.registry)

	node.disputes = dispute.NewManager(
		config.Dispute,
		config.EngineID,
		node.registry,
		attest.NewKeyVerifier(),
		resolver,
		node.executor,
		node.scheduler,
		st,
	)
	node.disputes.SetLogger(logger.With("module", "dispute"))

	quotes := attest.NewQuoteVerifier([]byte(config.Appeal.AttestationRoot))
	node.appeals = appeal.NewManager(config.Appeal, node.registry, quotes, node.disputes)
	node.appeals.SetLogger(logger.With("module", "appeal"))
	// appeal依赖dispute的finality信号来收尾
	node.disputes.AddFinalityHook(node.appeals.OnDisputeFinalized)

	node.metricSet.SetMetrics("dispute", node.disputes.Metric())
	node.metricSet.SetMetrics("settlement", node.executor.Metric())

	node.BaseService = *service.NewBaseService(logger, "Node", node)
	return node, nil
}

func (n *Node) OnStart() error {
	if err := n.scheduler.Start(); err != nil {
		return err
	}
	if err := n.disputes.Start(); err != nil {
		return err
	}
	if err := n.appeals.Start(); err != nil {
		return err
	}
	if err := n.retrier.Start(); err != nil {
		return err
	}

	return n.startRPC()
}

func (n *Node) OnStop() {
	for _, l := range n.rpcListeners {
		if err := l.Close(); err != nil {
			n.Logger.Error("error closing rpc listener", "err", err)
		}
	}

	n.retrier.Stop()
	n.appeals.Stop()
	n.disputes.Stop()
	n.scheduler.Stop()

	if err := n.store.Close(); err != nil {
		n.Logger.Error("error closing store", "err", err)
	}
}

func (n *Node) startRPC() error {
	rpc.SetEnvironment(&rpc.Environment{
		Registry:  n.registry,
		Epochs:    n.scheduler,
		Disputes:  n.disputes,
		Appeals:   n.appeals,
		Store:     n.store,
		MetricSet: n.metricSet,
	})

	rpcLogger := n.Logger.With("module", "rpc")
	mux := http.NewServeMux()
	rpcserver.RegisterRPCFuncs(mux, rpc.Routes, rpcLogger)

	serverCfg := rpcserver.DefaultConfig()
	serverCfg.MaxOpenConnections = n.config.RPC.MaxOpenConnections

	listener, err := rpcserver.Listen(n.config.RPC.ListenAddress, serverCfg)
	if err != nil {
		return err
	}
	n.rpcListeners = append(n.rpcListeners, listener)

	go func() {
		if err := rpcserver.Serve(listener, mux, rpcLogger, serverCfg); err != nil {
			rpcLogger.Error("rpc server terminated", "err", err)
		}
	}()

	rpcLogger.Info("rpc server listening", "laddr", n.config.RPC.ListenAddress)
	return nil
}

//----------------------------------------
// accessors

func (n *Node) Registry() *registry.Registry   { return n.registry }
func (n *Node) Disputes() *dispute.Manager     { return n.disputes }
func (n *Node) Appeals() *appeal.Manager       { return n.appeals }
func (n *Node) Scheduler() *epoch.Scheduler    { return n.scheduler }
func (n *Node) Executor() *settlement.Executor { return n.executor }
func (n *Node) MetricSet() *metric.MetricSet   { return n.metricSet }
