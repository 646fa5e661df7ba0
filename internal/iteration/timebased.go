package iteration

import "time"

// TimeBased advances to the next iteration purely on a wall-clock timeout;
// it never inspects ledger-validation events.
type TimeBased struct {
	core
}

// NewTimeBased builds a TimeBased controller. cfg.MaxLedgerSeq is ignored.
func NewTimeBased(cfg Config, interceptor Interceptor, checker SpecChecker) *TimeBased {
	t := &TimeBased{core: newCore(cfg, interceptor, checker)}
	t.runObserverLoop(nil)
	return t
}

// UpdateNetwork resizes the ledger validation bookkeeping. TimeBased keeps
// it for parity with LedgerBased; nothing in TimeBased reads it.
func (t *TimeBased) UpdateNetwork(nodeCount int) {
	t.core.UpdateNetwork(nodeCount)
}

// Start begins the first iteration and arms the timeout timer.
func (t *TimeBased) Start() error {
	t.mu.Lock()
	t.curIteration = 0
	t.phase = PhaseRunning
	t.mu.Unlock()
	t.addIteration(t.arm)
	return nil
}

func (t *TimeBased) arm() error {
	t.armTimer(t.timeoutDuration(), t.onTimeout)
	return nil
}

func (t *TimeBased) timeoutDuration() time.Duration {
	return time.Duration(t.cfg.TimeoutSeconds * float64(time.Second))
}

func (t *TimeBased) onTimeout() {
	t.addIteration(t.arm)
}
