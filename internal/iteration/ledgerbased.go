package iteration

import "time"

// LedgerBased advances either on timeout or as soon as every validator has
// reached cfg.MaxLedgerSeq, whichever comes first, and resets the timeout
// on every newly observed ledger. NewLedgerBased always sets
// cfg.LedgerTimeout to true, so a false value passed in has no effect.
type LedgerBased struct {
	core
}

// NewLedgerBased builds a LedgerBased controller. cfg.MaxLedgerSeq must be
// >= 1.
func NewLedgerBased(cfg Config, interceptor Interceptor, checker SpecChecker) *LedgerBased {
	cfg.LedgerTimeout = true
	l := &LedgerBased{core: newCore(cfg, interceptor, checker)}
	l.runObserverLoop(l.onEvent)
	return l
}

func (l *LedgerBased) UpdateNetwork(nodeCount int) {
	l.core.UpdateNetwork(nodeCount)
}

// Start begins the first iteration and arms the timeout timer.
func (l *LedgerBased) Start() error {
	l.mu.Lock()
	l.curIteration = 0
	l.phase = PhaseRunning
	l.mu.Unlock()
	l.addIteration(l.arm)
	return nil
}

func (l *LedgerBased) arm() error {
	l.armTimer(time.Duration(l.cfg.TimeoutSeconds*float64(time.Second)), l.onTimeout)
	return nil
}

func (l *LedgerBased) onTimeout() {
	l.addIteration(l.arm)
}

// onEvent is the strategy observer's StatusChangeEvent drained on l's own
// goroutine. A stale event for a node index beyond the currently installed
// set is dropped silently: the validator list may have been replaced by an
// update_network call between the event being posted and being drained.
func (l *LedgerBased) onEvent(ev StatusChangeEvent) {
	if ev.Msg == nil || ev.Msg.NewEvent != 1 {
		return
	}

	l.mu.Lock()
	if ev.FromIdx < 0 || ev.FromIdx >= l.nodeCount {
		l.mu.Unlock()
		return
	}
	if ev.Msg.LedgerSeq <= l.ledgerMap[ev.FromIdx].Seq {
		l.mu.Unlock()
		return
	}
	l.ledgerMap[ev.FromIdx] = LedgerValidationEntry{Seq: ev.Msg.LedgerSeq, Time: time.Now()}

	allAtGoal := true
	for _, entry := range l.ledgerMap {
		if int(entry.Seq) < l.cfg.MaxLedgerSeq {
			allAtGoal = false
			break
		}
	}
	resultLogger := l.resultLogger
	l.mu.Unlock()

	if l.cfg.LedgerTimeout {
		l.armTimer(time.Duration(l.cfg.TimeoutSeconds*float64(time.Second)), l.onTimeout)
	}

	if resultLogger != nil {
		seq := ev.Msg.LedgerSeq
		l.trackLogTask(func() { l.logLedgerResult(resultLogger, seq) })
	}

	if allAtGoal {
		l.addIteration(l.arm)
	}
}

func (l *LedgerBased) logLedgerResult(logger ResultLogger, seq uint32) {
	l.mu.Lock()
	goal := l.cfg.MaxLedgerSeq
	l.mu.Unlock()
	if err := logger.LogResult(int(seq), goal, 0, nil, nil, nil); err != nil {
		// Logging is best-effort off the hot path; a failure here must not
		// affect iteration advancement.
		_ = err
	}
}
