package rpcserver

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"

	"github.com/diseb-lab/rocket/internal/logging"
	"github.com/diseb-lab/rocket/internal/network"
)

// Processor is the strategy-shaped dependency the server calls for every
// packet: decode, decide, mutate. It never returns an error — a buggy
// strategy's panic is recovered at the call site and mapped to a drop.
type Processor interface {
	Process(raw []byte, fromIdx, toIdx int) ([]byte, network.Action)
}

// PortIndex resolves a validator's peer port to its network manager index.
type PortIndex interface {
	IndexForPort(port uint32) (int, bool)
}

// Server hosts the packet dispatch RPC. It bounds concurrent SendPacket
// processing with a weighted semaphore rather than relying on grpc-go's own
// per-stream goroutine fan-out, so a strategy with expensive per-packet
// logic cannot starve the process under load.
type Server struct {
	mu sync.RWMutex

	grpcServer *grpc.Server
	listener   net.Listener
	running    bool

	cfg       *Config
	sem       *semaphore.Weighted
	processor Processor
	ports     PortIndex
	execLog   *logging.ExecutionLogger
}

// New builds a Server bound to cfg, dispatching decoded packets to
// processor and resolving ports via ports. execLog may be nil, in which
// case the optional execution log is skipped.
func New(cfg *Config, processor Processor, ports PortIndex, execLog *logging.ExecutionLogger) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
	)

	s := &Server{
		grpcServer: grpcServer,
		cfg:        cfg,
		sem:        semaphore.NewWeighted(cfg.Workers),
		processor:  processor,
		ports:      ports,
		execLog:    execLog,
	}
	grpcServer.RegisterService(&serviceDesc, s)
	return s, nil
}

// SendPacket implements PacketHandler. It is purely synchronous:
// decode-process-log-respond. Any panic from the processor is recovered and
// reported as a drop so a buggy strategy cannot crash the server.
func (s *Server) SendPacket(pkt Packet) (ack PacketAck) {
	ctx := context.Background()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return PacketAck{Data: pkt.Data, Action: uint32(network.ActionDrop)}
	}
	defer s.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("rpcserver: strategy panicked on packet %d->%d: %v", pkt.FromPort, pkt.ToPort, r)
			ack = PacketAck{Data: pkt.Data, Action: uint32(network.ActionDrop)}
		}
	}()

	fromIdx, ok1 := s.ports.IndexForPort(pkt.FromPort)
	toIdx, ok2 := s.ports.IndexForPort(pkt.ToPort)
	if !ok1 || !ok2 {
		return PacketAck{Data: pkt.Data, Action: uint32(network.ActionDrop)}
	}

	out, action := s.processor.Process(pkt.Data, fromIdx, toIdx)

	if s.execLog != nil {
		if err := s.execLog.LogExecution(uint32(action), pkt.FromPort, pkt.ToPort, pkt.Data); err != nil {
			log.Printf("rpcserver: execution log write failed: %v", err)
		}
	}

	return PacketAck{Data: out, Action: uint32(action)}
}

// Start binds the listener and serves until Stop is called. It blocks.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("rpcserver: already running")
	}
	listener, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	return s.grpcServer.Serve(listener)
}

// StartAsync starts Start in a background goroutine.
func (s *Server) StartAsync() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("rpcserver: already running")
	}
	listener, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			log.Printf("rpcserver: serve exited: %v", err)
		}
	}()
	return nil
}

// Stop gracefully stops the server with a 1-second grace period: in-flight
// RPCs that have not finished by then are cut off with a hard stop.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.grpcServer.Stop()
		<-done
	}
	s.running = false
}

// IsRunning reports whether the server is currently accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the address the server is listening on, or "" if not
// running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
