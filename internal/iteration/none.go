package iteration

import "time"

// None runs a single iteration with no ledger observation: timeout
// terminates the whole process rather than advancing, and SetLogDir /
// status-change events are no-ops.
type None struct {
	core
}

// NewNone builds a None controller. cfg.MaxIterations is ignored; exactly
// one iteration ever runs.
func NewNone(cfg Config, interceptor Interceptor) *None {
	n := &None{core: newCore(cfg, interceptor, nil)}
	n.runObserverLoop(nil)
	return n
}

// SetLogDir is a no-op: None never creates a result logger.
func (n *None) SetLogDir(string) {}

// Start begins the single iteration and arms the timeout timer.
func (n *None) Start() error {
	n.mu.Lock()
	n.curIteration = 1
	n.phase = PhaseRunning
	n.mu.Unlock()
	if err := n.interceptor.StartNew(); err != nil {
		return err
	}
	n.armTimer(time.Duration(n.cfg.TimeoutSeconds*float64(time.Second)), n.onTimeout)
	return nil
}

// onTimeout stops everything and terminates; unlike TimeBased/LedgerBased,
// expiry never rolls over to a fresh iteration.
func (n *None) onTimeout() {
	n.stopAll()
	n.terminateServer()
}
