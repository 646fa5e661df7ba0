package di

import (
	"fmt"
	"log"

	"github.com/diseb-lab/rocket/internal/codec"
	"github.com/diseb-lab/rocket/internal/config"
	"github.com/diseb-lab/rocket/internal/interceptor"
	"github.com/diseb-lab/rocket/internal/iteration"
	"github.com/diseb-lab/rocket/internal/logging"
	"github.com/diseb-lab/rocket/internal/network"
	"github.com/diseb-lab/rocket/internal/rpcserver"
	"github.com/diseb-lab/rocket/internal/speccheck"
	"github.com/diseb-lab/rocket/internal/strategy"
)

// decodeCacheSize bounds the strategy layer's decode memoisation: large
// enough to cover one iteration's worth of distinct broadcast payloads
// without growing unbounded across a long-running session.
const decodeCacheSize = 4096

// Controller is the subset of the three iteration variants Run needs:
// start the first iteration, and learn when the whole process should exit.
type Controller interface {
	Start() error
	Done() <-chan struct{}
	Events() chan<- iteration.StatusChangeEvent
}

// strategyProcessor adapts a strategy.Core plus the concrete Strategy that
// embeds it into the self-less rpcserver.Processor shape: Core.Process
// needs a reference to the embedding type to call HandlePacket on it, which
// Go's composition model otherwise has no way to recover.
type strategyProcessor struct {
	self strategy.Strategy
	core *strategy.Core
}

func (p *strategyProcessor) Process(raw []byte, fromIdx, toIdx int) ([]byte, network.Action) {
	return p.core.Process(p.self, raw, fromIdx, toIdx)
}

// actionLogAdapter drops LogAction's error return to match the
// strategy.ActionLog interface, which (unlike logging.ActionLogger's
// underlying CSV writer) has no way to surface a write failure to the
// packet pipeline without blocking it.
type actionLogAdapter struct {
	logger *logging.ActionLogger
}

func (a *actionLogAdapter) LogAction(action network.Action, sendAmount, fromIdx, toIdx int, messageType codec.MessageType, original, mutated []byte) {
	if err := a.logger.LogAction(action, sendAmount, fromIdx, toIdx, messageType, original, mutated); err != nil {
		log.Printf("di: action log write failed: %v", err)
	}
}

// observerAdapter forwards status-change notifications from the strategy
// layer to whichever iteration controller variant is active, without the
// strategy goroutine ever touching the controller's own mutex.
type observerAdapter struct {
	controller Controller
}

func (o *observerAdapter) Observe(typeID codec.MessageType, msg interface{}, fromIdx, toIdx int) {
	sc, ok := msg.(*codec.StatusChange)
	if !ok {
		return
	}
	select {
	case o.controller.Events() <- iteration.StatusChangeEvent{FromIdx: fromIdx, ToIdx: toIdx, Msg: sc}:
	default:
		log.Printf("di: dropped status-change event for %d->%d, controller not draining", fromIdx, toIdx)
	}
}

func toValidatorNodes(vs []config.ValidatorConfig) []network.ValidatorNode {
	nodes := make([]network.ValidatorNode, len(vs))
	for i, v := range vs {
		nodes[i] = network.ValidatorNode{
			Peer:            network.SocketAddress{Host: v.Peer.Host, Port: v.Peer.Port},
			WebsocketPublic: network.SocketAddress{Host: v.WebsocketPublic.Host, Port: v.WebsocketPublic.Port},
			WebsocketAdmin:  network.SocketAddress{Host: v.WebsocketAdmin.Host, Port: v.WebsocketAdmin.Port},
			RPC:             network.SocketAddress{Host: v.RPC.Host, Port: v.RPC.Port},
			KeyData:         network.ValidatorKeyData{PublicKey: v.PublicKey},
		}
	}
	return nodes
}

// Wire builds every component spec.md §2 names, in dependency order (Codec
// has none, NetworkManager needs none, Strategy needs NetworkManager,
// IterationController needs InterceptorManager + SpecChecker, PacketServer
// needs Strategy), and registers them on a fresh Container.
func Wire(cfg *config.Config) (*Container, error) {
	c := New()
	c.Register(ServiceConfig, cfg)

	manager := network.NewManager(network.Options{
		AutoParseIdentical: cfg.Strategy.AutoParseIdentical,
		AutoParseSubsets:   cfg.Strategy.AutoParseSubsets,
	})
	manager.UpdateNetwork(toValidatorNodes(cfg.Validators))
	c.Register(ServiceNetworkManager, manager)

	for _, v := range cfg.Validators {
		if v.PublicKey == "" {
			continue
		}
		if err := network.ValidatePubKey(v.PublicKey); err != nil {
			log.Printf("di: validator at port %d has a malformed public key: %v", v.Peer.Port, err)
			continue
		}
		if fp, err := network.Fingerprint(v.PublicKey); err == nil {
			log.Printf("di: validator at port %d fingerprint %s", v.Peer.Port, fp)
		}
	}

	interceptorMgr := interceptor.NewManager(cfg.Interceptor.Command, cfg.Interceptor.Args...)
	c.Register(ServiceInterceptorManager, interceptorMgr)

	var actionLog strategy.ActionLog
	if cfg.Strategy.KeepActionLog {
		actionLogger, err := logging.NewActionLogger(cfg.Logging.Directory, "")
		if err != nil {
			return nil, fmt.Errorf("di: failed to open action logger: %w", err)
		}
		c.Register(ServiceActionLogger, actionLogger)
		actionLog = &actionLogAdapter{logger: actionLogger}
	}

	specLogger, err := logging.NewSpecCheckLogger(cfg.Logging.Directory, "spec_check_log")
	if err != nil {
		return nil, fmt.Errorf("di: failed to open spec-check logger: %w", err)
	}
	checker := speccheck.NewChecker(func(iteration int) string {
		return fmt.Sprintf("logs/%s/result_log_iter%d.csv", cfg.Logging.Directory, iteration)
	}, specLogger)
	c.Register(ServiceSpecChecker, checker)

	iterCfg := iteration.Config{
		MaxIterations:  cfg.Iteration.MaxIterations,
		TimeoutSeconds: cfg.Iteration.TimeoutSeconds,
		MaxLedgerSeq:   cfg.Iteration.MaxLedgerSeq,
		LogDir:         cfg.Logging.Directory,
		NewResultLogger: func(it int) (iteration.ResultLogger, error) {
			return logging.NewResultLogger(cfg.Logging.Directory, fmt.Sprintf("result_log_iter%d", it))
		},
		ArchiveOnIteration: cfg.Logging.ArchiveOnIteration,
		Archive:            logging.ArchiveIteration,
	}

	var controller Controller
	switch cfg.Iteration.Type {
	case "ledger_based":
		controller = iteration.NewLedgerBased(iterCfg, interceptorMgr, checker)
	case "none":
		controller = iteration.NewNone(iterCfg, interceptorMgr)
	default:
		controller = iteration.NewTimeBased(iterCfg, interceptorMgr, checker)
	}
	controller.(interface{ UpdateNetwork(int) }).UpdateNetwork(len(cfg.Validators))
	c.Register(ServiceIterationController, controller)

	strategyOpts := strategy.Options{
		AutoPartition:      cfg.Strategy.AutoPartition,
		AutoParseIdentical: cfg.Strategy.AutoParseIdentical,
		AutoParseSubsets:   cfg.Strategy.AutoParseSubsets,
		KeepActionLog:      cfg.Strategy.KeepActionLog,
	}
	decodeCache, err := codec.NewDecodeCache(decodeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("di: failed to build decode cache: %w", err)
	}

	observer := &observerAdapter{controller: controller}
	strat := strategy.NewPassthroughWithDecodeCache(strategyOpts, manager, observer, actionLog, decodeCache)
	strat.Setup()
	c.Register(ServiceStrategy, strat)

	var execLogger *logging.ExecutionLogger
	if cfg.Logging.ExecutionLogger {
		execLogger, err = logging.NewExecutionLogger(cfg.Logging.Directory, "")
		if err != nil {
			return nil, fmt.Errorf("di: failed to open execution logger: %w", err)
		}
	}

	rpcCfg := &rpcserver.Config{
		Address:        cfg.RPC.Address,
		MaxRecvMsgSize: cfg.RPC.MaxRecvMsgSize,
		MaxSendMsgSize: cfg.RPC.MaxSendMsgSize,
		Workers:        cfg.RPC.Workers,
	}
	processor := &strategyProcessor{self: strat, core: &strat.Core}
	server, err := rpcserver.New(rpcCfg, processor, manager, execLogger)
	if err != nil {
		return nil, fmt.Errorf("di: failed to build rpc server: %w", err)
	}
	c.Register(ServicePacketServer, server)

	return c, nil
}

// Run starts the iteration controller and then blocks serving RPCs until
// the controller declares the run finished.
func Run(c *Container) error {
	controller := c.MustGet(ServiceIterationController).(Controller)
	server := c.MustGet(ServicePacketServer).(*rpcserver.Server)

	if err := server.StartAsync(); err != nil {
		return err
	}
	if err := controller.Start(); err != nil {
		return err
	}

	<-controller.Done()
	server.Stop()
	return nil
}
