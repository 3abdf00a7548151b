package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/codebeauty/loadingsse/internal/sequencer"
	"github.com/codebeauty/loadingsse/internal/stage"
)

type Outcome string

const (
	OutcomeCompleted   Outcome = "completed"
	OutcomeInterrupted Outcome = "interrupted"
	OutcomeStopped     Outcome = "stopped"
)

// Manifest is the run.json recording of one emitted timeline.
type Manifest struct {
	Version     int             `json:"version"`
	RunID       string          `json:"runId"`
	Script      string          `json:"script"`
	Locale      stage.Locale    `json:"locale"`
	Outcome     Outcome         `json:"outcome"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt time.Time       `json:"completedAt"`
	Duration    string          `json:"duration"`
	Platform    string          `json:"platform"`
	Timeline    []TimelineEntry `json:"timeline"`
}

type TimelineEntry struct {
	Stage      stage.Stage `json:"stage"`
	Percentage int         `json:"percentage"`
	Message    string      `json:"message"`
	Offset     string      `json:"offset"`
	OffsetMs   int64       `json:"offsetMs"`
}

func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "run.json"))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing run.json: %w", err)
	}
	return &m, nil
}

func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return AtomicWrite(filepath.Join(dir, "run.json"), data, 0o600)
}

// BuildManifest turns the snapshots of one run into a recording. Offsets are
// measured from startedAt.
func BuildManifest(script string, loc stage.Locale, startedAt, completedAt time.Time, snaps []stage.Snapshot, outcome Outcome) *Manifest {
	timeline := make([]TimelineEntry, len(snaps))
	runID := ""
	for i, s := range snaps {
		offset := s.Timestamp.Sub(startedAt)
		if offset < 0 {
			offset = 0
		}
		timeline[i] = TimelineEntry{
			Stage:      s.Stage,
			Percentage: s.Percentage,
			Message:    s.Message,
			Offset:     offset.Round(time.Millisecond).String(),
			OffsetMs:   offset.Milliseconds(),
		}
		runID = s.RunID
	}

	return &Manifest{
		Version:     1,
		RunID:       runID,
		Script:      script,
		Locale:      loc,
		Outcome:     outcome,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt).Round(time.Millisecond).String(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		Timeline:    timeline,
	}
}

// Recorder collects the snapshots emitted for the most recent run.
type Recorder struct {
	mu      sync.Mutex
	runID   string
	version uint64
	last    *stage.Snapshot
	snaps   []stage.Snapshot
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Listener adapts the recorder to a sequencer subscription.
func (r *Recorder) Listener() sequencer.Listener {
	return r.observe
}

func (r *Recorder) observe(st sequencer.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st.Version <= r.version {
		return
	}
	r.version = st.Version
	if st.Snapshot == nil || st.Snapshot == r.last {
		return
	}
	r.last = st.Snapshot
	if st.Snapshot.RunID != r.runID {
		r.runID = st.Snapshot.RunID
		r.snaps = nil
	}
	r.snaps = append(r.snaps, *st.Snapshot)
}

// Snapshots returns a copy of the recorded timeline.
func (r *Recorder) Snapshots() []stage.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]stage.Snapshot, len(r.snaps))
	copy(out, r.snaps)
	return out
}

// Outcome classifies the recorded timeline.
func (r *Recorder) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.snaps); n > 0 && r.snaps[n-1].Stage == stage.Completed {
		return OutcomeCompleted
	}
	return OutcomeInterrupted
}
