package sequencer

import "github.com/codebeauty/loadingsse/internal/stage"

// Phase is the coarse lifecycle position of a run.
type Phase int

const (
	PhaseIdle      Phase = iota // no run, nothing to show
	PhaseRunning                // timer chain active
	PhaseCompleted              // terminal snapshot retained until reset
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// State is a copy of the sequencer's run state.
type State struct {
	RunID string
	// Running is true from Start until the completed snapshot is emitted.
	Running bool
	// Restarting is true between the stop and start halves of Reset.
	Restarting bool
	// Cursor counts stages entered; len(script)+1 once completed.
	Cursor int
	Total  int
	// Snapshot is the last emitted snapshot, nil before the first tick.
	Snapshot *stage.Snapshot
	// Version increases with every change so subscribers receiving states
	// asynchronously can drop stale ones.
	Version uint64
}

func (s State) Phase() Phase {
	switch {
	case s.Running:
		return PhaseRunning
	case s.Snapshot != nil && s.Snapshot.Stage.Terminal():
		return PhaseCompleted
	default:
		return PhaseIdle
	}
}

// Completed reports whether the state holds the terminal snapshot.
func (s State) Completed() bool { return s.Phase() == PhaseCompleted }
