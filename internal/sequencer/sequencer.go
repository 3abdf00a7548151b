package sequencer

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/codebeauty/loadingsse/internal/log"
	"github.com/codebeauty/loadingsse/internal/schedule"
	"github.com/codebeauty/loadingsse/internal/stage"
)

// DefaultResetDelay is the pause between the stop and start halves of Reset.
const DefaultResetDelay = 100 * time.Millisecond

// Config is the configuration for the sequencer.
type Config struct {
	// Script is the stage script. Defaults to the built-in English script.
	Script stage.Script
	// Scheduler drives the ticks. Defaults to the runtime timer.
	Scheduler schedule.Scheduler
	// ResetDelay is the wait between stop and start on Reset.
	ResetDelay time.Duration
	Logger     log.Logger
}

func (c *Config) defaults() error {
	if len(c.Script.Stages) == 0 {
		c.Script = stage.DefaultScript(stage.LocaleEN)
	}
	if err := c.Script.Validate(); err != nil {
		return fmt.Errorf("script: %w", err)
	}

	if c.Scheduler == nil {
		c.Scheduler = schedule.Real{}
	}

	if c.ResetDelay < 0 {
		return fmt.Errorf("reset delay must not be negative")
	}
	if c.ResetDelay == 0 {
		c.ResetDelay = DefaultResetDelay
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sequencer.Sequencer"})

	return nil
}

// Listener receives a copy of the run state after every change.
type Listener func(State)

// Sequencer steps through a stage script on timers. All mutations go through
// Start, Stop, Reset and the internal tick; subscribers only observe.
type Sequencer struct {
	sched      schedule.Scheduler
	resetDelay time.Duration
	logger     log.Logger

	mu        sync.Mutex
	next      stage.Script // applied on the next Start
	script    stage.Script // script of the current run
	runID     string
	running   bool
	restart   bool
	cursor    int
	snapshot  *stage.Snapshot
	gen       uint64
	pending   schedule.Handle
	version   uint64
	listeners map[int]Listener
	nextID    int
}

// New creates a new idle sequencer.
func New(cfg Config) (*Sequencer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Sequencer{
		sched:      cfg.Scheduler,
		resetDelay: cfg.ResetDelay,
		logger:     cfg.Logger,
		next:       cfg.Script,
		script:     cfg.Script,
		listeners:  make(map[int]Listener),
	}, nil
}

// Subscribe registers fn and returns a function that removes it. Listeners run
// outside the sequencer lock and may call back into the sequencer.
func (s *Sequencer) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// State returns a copy of the current run state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Script returns the script the next run will use.
func (s *Sequencer) Script() stage.Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// SetScript replaces the script. A run in progress keeps its own script; the
// new one takes effect on the next Start.
func (s *Sequencer) SetScript(script stage.Script) error {
	if err := script.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.next = script
	s.mu.Unlock()
	s.logger.Infof("script %q loaded with %d stages", script.Name, len(script.Stages))
	return nil
}

// Start begins a fresh run from the first stage. Any pending tick or delayed
// restart is cancelled first, so calling Start while running restarts the run
// with a single timer chain.
func (s *Sequencer) Start() {
	s.mu.Lock()
	wasRunning := s.running
	st := s.startLocked()
	ls := s.listenersLocked()
	s.mu.Unlock()

	if wasRunning {
		s.logger.Debugf("restarting run in progress")
	}
	s.logger.Infof("run %s started", st.RunID)
	notify(ls, st)
}

// Stop cancels the run and returns to idle. Stopping an idle sequencer is a no-op.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	if !s.running && !s.restart && s.snapshot == nil && s.pending == nil {
		s.mu.Unlock()
		return
	}
	runID := s.runID
	s.stopLocked()
	st := s.changedLocked()
	ls := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Infof("run %s stopped", runID)
	notify(ls, st)
}

// Reset stops the current run and starts a new one after the reset delay. The
// delayed start is cancelled by Stop, Start or another Reset.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	s.stopLocked()
	s.restart = true
	gen := s.gen
	s.pending = s.sched.AfterFunc(s.resetDelay, func() { s.restartAfterReset(gen) })
	st := s.changedLocked()
	ls := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Debugf("reset requested, restarting in %s", s.resetDelay)
	notify(ls, st)
}

func (s *Sequencer) restartAfterReset(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.restart {
		s.mu.Unlock()
		s.logger.Debugf("discarding stale restart")
		return
	}
	st := s.startLocked()
	ls := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Infof("run %s started after reset", st.RunID)
	notify(ls, st)
}

// tick enters the stage under the cursor, or completes the run once the
// script is exhausted. The wait scheduled after entering a stage is that
// stage's own duration.
func (s *Sequencer) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.running {
		s.mu.Unlock()
		s.logger.Debugf("discarding stale tick")
		return
	}
	s.pending = nil

	now := s.sched.Now()
	var snap stage.Snapshot
	if s.cursor < len(s.script.Stages) {
		d := s.script.Stages[s.cursor]
		snap = s.script.SnapshotAt(s.cursor, s.runID, now)
		s.cursor++
		s.pending = s.sched.AfterFunc(d.Duration, func() { s.tick(gen) })
	} else {
		snap = s.script.CompletedSnapshot(s.runID, now)
		s.cursor = len(s.script.Stages) + 1
		s.running = false
	}
	s.snapshot = &snap
	st := s.changedLocked()
	ls := s.listenersLocked()
	s.mu.Unlock()

	if snap.Stage.Terminal() {
		s.logger.Infof("run %s completed", snap.RunID)
	} else {
		s.logger.WithValues(log.Kv{"stage": snap.Stage, "percentage": snap.Percentage}).Debugf("entered stage")
	}
	notify(ls, st)
}

func (s *Sequencer) startLocked() State {
	s.cancelLocked()
	s.script = s.next
	s.runID = ulid.MustNew(ulid.Timestamp(s.sched.Now()), rand.Reader).String()
	s.running = true
	s.restart = false
	s.cursor = 0
	s.snapshot = nil
	gen := s.gen
	s.pending = s.sched.AfterFunc(0, func() { s.tick(gen) })
	return s.changedLocked()
}

func (s *Sequencer) stopLocked() {
	s.cancelLocked()
	s.runID = ""
	s.running = false
	s.restart = false
	s.cursor = 0
	s.snapshot = nil
}

// cancelLocked stops the pending task and invalidates every callback already
// scheduled, including one whose timer fired but has not yet taken the lock.
func (s *Sequencer) cancelLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
}

// changedLocked records a state change and returns the new state.
func (s *Sequencer) changedLocked() State {
	s.version++
	return s.stateLocked()
}

func (s *Sequencer) stateLocked() State {
	return State{
		RunID:      s.runID,
		Running:    s.running,
		Restarting: s.restart,
		Cursor:     s.cursor,
		Total:      len(s.script.Stages),
		Snapshot:   s.snapshot,
		Version:    s.version,
	}
}

func (s *Sequencer) listenersLocked() []Listener {
	ls := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			ls = append(ls, fn)
		}
	}
	return ls
}

func notify(ls []Listener, st State) {
	for _, fn := range ls {
		fn(st)
	}
}
