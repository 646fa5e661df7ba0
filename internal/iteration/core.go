// Package iteration drives bounded fuzzing experiments: starting and
// stopping the interceptor and validator containers across a sequence of
// iterations, observing ledger-validation progress, and deciding when to
// advance to the next iteration or terminate the whole process.
package iteration

import (
	"log"
	"sync"
	"time"

	"github.com/diseb-lab/rocket/internal/codec"
)

// LedgerValidationEntry is the per-node bookkeeping updated on each
// observed status-change event of type "accepted ledger".
type LedgerValidationEntry struct {
	Seq  uint32
	Time time.Time
}

// StatusChangeEvent is posted by the strategy layer's observer instead of
// calling into the controller directly, so the strategy goroutine never
// takes the controller's mutex itself.
type StatusChangeEvent struct {
	FromIdx int
	ToIdx   int
	Msg     *codec.StatusChange
}

// Interceptor is the subset of InterceptorManager the controller needs to
// drive iterations, kept as an interface so tests can substitute a fake.
type Interceptor interface {
	StartNew() error
	Stop() error
	CleanupContainers() error
}

// SpecChecker runs the spec-check pass over a completed iteration's result
// log. Defined here as an interface so this package does not import the
// speccheck package.
type SpecChecker interface {
	CheckIteration(iteration int) error
	Aggregate() error
}

// ResultLoggerFactory builds a fresh result logger for each new iteration.
type ResultLoggerFactory func(iteration int) (ResultLogger, error)

// ResultLogger is the minimal logging surface a controller needs per
// iteration; internal/logging.ResultLogger satisfies it.
type ResultLogger interface {
	LogResult(ledgerCount, goalLedgerCount int, timeToConsensus float64, closeTimes []time.Time, ledgerHashes [][]byte, ledgerIndexes []uint32) error
	Close() error
	Path() string
}

// ArchiveFunc compresses a completed iteration's result log and removes the
// original, returning the archive's path. internal/logging.ArchiveIteration
// satisfies it; kept as a func type rather than an import to avoid a cycle
// with internal/logging.
type ArchiveFunc func(path string) (string, error)

// Phase is the controller's coarse lifecycle state.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseRunning
	PhaseAdvancing
	PhaseTerminating
)

// Config bundles the parameters every variant shares.
type Config struct {
	MaxIterations   int
	TimeoutSeconds  float64
	MaxLedgerSeq    int // -1 = time-based, >=1 = ledger-based
	LedgerTimeout   bool
	LogDir          string
	NewResultLogger ResultLoggerFactory

	// ArchiveOnIteration, when true, compresses each iteration's result log
	// with Archive once the iteration rolls over or the run terminates.
	ArchiveOnIteration bool
	Archive            ArchiveFunc
}

// core is the shared state machine embedded by TimeBased, LedgerBased and
// None, mirroring how strategy.Core is embedded by concrete strategies.
type core struct {
	mu sync.Mutex

	cfg         Config
	interceptor Interceptor
	checker     SpecChecker

	phase       Phase
	curIteration int
	nodeCount   int
	ledgerMap   []LedgerValidationEntry

	resultLogger ResultLogger
	timer        *time.Timer

	events    chan StatusChangeEvent
	done      chan struct{}
	onAdvance func()

	// logWG tracks outstanding per-ledger logging goroutines (see
	// LedgerBased.logLedgerResult) so addIteration can join them before
	// running the spec check over the very log they write to.
	logWG sync.WaitGroup
}

// trackLogTask runs fn on its own goroutine, registered on logWG so
// addIteration can wait for it to finish flushing before spec-checking the
// iteration it just logged for.
func (c *core) trackLogTask(fn func()) {
	c.logWG.Add(1)
	go func() {
		defer c.logWG.Done()
		fn()
	}()
}

func newCore(cfg Config, interceptor Interceptor, checker SpecChecker) core {
	return core{
		cfg:         cfg,
		interceptor: interceptor,
		checker:     checker,
		phase:       PhaseInit,
		events:      make(chan StatusChangeEvent, 256),
		done:        make(chan struct{}),
	}
}

// SetLogDir updates the directory loggers write under. Exposed so the None
// variant can override it as a no-op per spec (it never creates loggers).
func (c *core) SetLogDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.LogDir = dir
}

// Phase returns the controller's current lifecycle phase.
func (c *core) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// CurIteration returns the 1-based index of the iteration currently running,
// or 0 before the first Start.
func (c *core) CurIteration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curIteration
}

// Events returns the channel the strategy layer's observer should post
// StatusChangeEvents to. Only meaningful for LedgerBased; other variants
// drain it without acting on it.
func (c *core) Events() chan<- StatusChangeEvent {
	return c.events
}

// runObserverLoop drains c.events on its own goroutine for the lifetime of
// the controller, calling onEvent (if non-nil) for each one. This is the
// message-passing boundary that keeps the strategy goroutine from ever
// taking c.mu directly.
func (c *core) runObserverLoop(onEvent func(StatusChangeEvent)) {
	go func() {
		for {
			select {
			case ev := <-c.events:
				if onEvent != nil {
					onEvent(ev)
				}
			case <-c.done:
				return
			}
		}
	}()
}

// UpdateNetwork resizes the ledger validation map for a freshly installed
// validator set and resets it to seq=1 at the current time, per spec.md §3.
func (c *core) UpdateNetwork(nodeCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeCount = nodeCount
	now := time.Now()
	c.ledgerMap = make([]LedgerValidationEntry, nodeCount)
	for i := range c.ledgerMap {
		c.ledgerMap[i] = LedgerValidationEntry{Seq: 1, Time: now}
	}
}

func (c *core) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *core) armTimer(d time.Duration, onFire func()) {
	c.mu.Lock()
	c.stopTimerLocked()
	c.timer = time.AfterFunc(d, onFire)
	c.mu.Unlock()
}

// stopAll stops the interceptor and its validator containers. Errors are
// logged, not propagated: shutdown must proceed regardless.
func (c *core) stopAll() {
	if err := c.interceptor.Stop(); err != nil {
		log.Printf("iteration: interceptor stop failed: %v", err)
	}
	if err := c.interceptor.CleanupContainers(); err != nil {
		log.Printf("iteration: container cleanup failed: %v", err)
	}
}

func (c *core) terminateServer() {
	c.mu.Lock()
	c.phase = PhaseTerminating
	c.stopTimerLocked()
	c.mu.Unlock()
	close(c.done)
}

// Done is closed once the controller has fully terminated.
func (c *core) Done() <-chan struct{} {
	return c.done
}

// addIteration implements the shared advance-iteration algorithm of
// spec.md §4.4: run the outstanding spec check for the iteration that just
// ended, then either roll over to a fresh iteration or terminate.
func (c *core) addIteration(startFn func() error) {
	// Join any outstanding per-ledger logging goroutines before advancing
	// and reading the log they write to, so the spec check never races the
	// final flush.
	c.logWG.Wait()

	c.mu.Lock()
	prevIteration := c.curIteration
	c.curIteration++
	cur := c.curIteration
	c.phase = PhaseAdvancing
	c.mu.Unlock()

	if prevIteration > 0 && c.checker != nil {
		if err := c.checker.CheckIteration(prevIteration); err != nil {
			log.Printf("iteration: spec check for iteration %d failed: %v", prevIteration, err)
		}
	}

	if cur <= c.cfg.MaxIterations {
		c.stopAll()
		if c.cfg.NewResultLogger != nil {
			logger, err := c.cfg.NewResultLogger(cur)
			if err != nil {
				log.Printf("iteration: failed to open result logger for iteration %d: %v", cur, err)
			} else {
				c.mu.Lock()
				prevLogger := c.resultLogger
				c.resultLogger = logger
				c.mu.Unlock()
				if prevLogger != nil {
					prevLogger.Close()
					c.archiveResultLog(prevLogger)
				}
			}
		}
		if err := c.interceptor.StartNew(); err != nil {
			log.Printf("iteration: failed to start interceptor for iteration %d: %v", cur, err)
		}
		if err := startFn(); err != nil {
			log.Printf("iteration: failed to arm next iteration: %v", err)
		}
		c.mu.Lock()
		c.phase = PhaseRunning
		c.mu.Unlock()
		return
	}

	c.stopAll()
	if c.checker != nil {
		if err := c.checker.Aggregate(); err != nil {
			log.Printf("iteration: failed to aggregate spec checks: %v", err)
		}
	}
	c.mu.Lock()
	finalLogger := c.resultLogger
	c.mu.Unlock()
	if finalLogger != nil {
		finalLogger.Close()
		c.archiveResultLog(finalLogger)
	}
	c.terminateServer()
}

// archiveResultLog compresses logger's file with cfg.Archive and removes the
// original, when archiving is enabled. Errors are logged, not propagated:
// archiving is best-effort housekeeping, never load-bearing for correctness.
func (c *core) archiveResultLog(logger ResultLogger) {
	if !c.cfg.ArchiveOnIteration || c.cfg.Archive == nil {
		return
	}
	if _, err := c.cfg.Archive(logger.Path()); err != nil {
		log.Printf("iteration: failed to archive result log %s: %v", logger.Path(), err)
	}
}
