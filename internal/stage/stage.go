package stage

import (
	"errors"
	"fmt"
	"time"
)

// Stage identifies one step of a simulated process.
type Stage string

const (
	Initializing     Stage = "initializing"
	ProcessingData   Stage = "processing_data"
	Validating       Stage = "validating"
	GeneratingReport Stage = "generating_report"
	Finalizing       Stage = "finalizing"
	Completed        Stage = "completed" // synthesized, never part of a script
)

// All lists every stage in display order, including the terminal one.
var All = []Stage{Initializing, ProcessingData, Validating, GeneratingReport, Finalizing, Completed}

// Valid reports whether s is a known stage tag.
func (s Stage) Valid() bool {
	for _, known := range All {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s is the synthesized completion stage.
func (s Stage) Terminal() bool { return s == Completed }

// Locale selects the language of built-in messages and labels.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleJA Locale = "ja"
)

// ParseLocale validates a locale string. An empty string selects English.
func ParseLocale(s string) (Locale, error) {
	switch Locale(s) {
	case LocaleEN, LocaleJA:
		return Locale(s), nil
	case "":
		return LocaleEN, nil
	default:
		return "", fmt.Errorf("invalid locale %q: must be en or ja", s)
	}
}

// Descriptor is one entry of a stage script.
type Descriptor struct {
	Stage      Stage         `json:"stage"`
	Duration   time.Duration `json:"duration"`
	Message    string        `json:"message"`
	Percentage int           `json:"percentage"`
}

// Snapshot is the progress emitted when the sequencer enters a stage.
type Snapshot struct {
	RunID      string    `json:"runId"`
	Stage      Stage     `json:"stage"`
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Script is an ordered list of descriptors. The terminal completed snapshot is
// not part of Stages; it is built from CompletedMessage once Stages is exhausted.
type Script struct {
	Name             string
	Stages           []Descriptor
	CompletedMessage string
}

var (
	ErrEmptyScript   = errors.New("script has no stages")
	ErrInvalidScript = errors.New("invalid script")
)

// Validate checks the ordering and range invariants of the script.
func (s Script) Validate() error {
	if len(s.Stages) == 0 {
		return ErrEmptyScript
	}

	prev := 0
	for i, d := range s.Stages {
		switch {
		case !d.Stage.Valid():
			return fmt.Errorf("%w: stage %d: unknown stage %q", ErrInvalidScript, i, d.Stage)
		case d.Stage.Terminal():
			return fmt.Errorf("%w: stage %d: %q is synthesized and cannot be scripted", ErrInvalidScript, i, d.Stage)
		case d.Duration <= 0:
			return fmt.Errorf("%w: stage %d (%s): duration must be positive, got %s", ErrInvalidScript, i, d.Stage, d.Duration)
		case d.Percentage < 0 || d.Percentage > 100:
			return fmt.Errorf("%w: stage %d (%s): percentage %d out of range [0,100]", ErrInvalidScript, i, d.Stage, d.Percentage)
		case d.Percentage < prev:
			return fmt.Errorf("%w: stage %d (%s): percentage %d decreases from %d", ErrInvalidScript, i, d.Stage, d.Percentage, prev)
		}
		prev = d.Percentage
	}
	return nil
}

// TotalDuration is the time one uninterrupted run takes.
func (s Script) TotalDuration() time.Duration {
	var total time.Duration
	for _, d := range s.Stages {
		total += d.Duration
	}
	return total
}

// CompletedSnapshot builds the terminal snapshot for a run.
func (s Script) CompletedSnapshot(runID string, at time.Time) Snapshot {
	msg := s.CompletedMessage
	if msg == "" {
		msg = completedMessages[LocaleEN]
	}
	return Snapshot{
		RunID:      runID,
		Stage:      Completed,
		Percentage: 100,
		Message:    msg,
		Timestamp:  at,
	}
}

// SnapshotAt builds the snapshot for the descriptor at index i.
func (s Script) SnapshotAt(i int, runID string, at time.Time) Snapshot {
	d := s.Stages[i]
	return Snapshot{
		RunID:      runID,
		Stage:      d.Stage,
		Percentage: d.Percentage,
		Message:    d.Message,
		Timestamp:  at,
	}
}

var defaultMessages = map[Locale]map[Stage]string{
	LocaleEN: {
		Initializing:     "Initializing system...",
		ProcessingData:   "Processing data...",
		Validating:       "Validating data...",
		GeneratingReport: "Generating report...",
		Finalizing:       "Finishing up...",
	},
	LocaleJA: {
		Initializing:     "システムを初期化しています...",
		ProcessingData:   "データを処理しています...",
		Validating:       "データを検証しています...",
		GeneratingReport: "レポートを生成しています...",
		Finalizing:       "処理を完了しています...",
	},
}

var completedMessages = map[Locale]string{
	LocaleEN: "Processing complete",
	LocaleJA: "処理が完了しました",
}

// DefaultScript returns the built-in five stage script.
func DefaultScript(loc Locale) Script {
	msgs, ok := defaultMessages[loc]
	if !ok {
		loc = LocaleEN
		msgs = defaultMessages[LocaleEN]
	}
	return Script{
		Name: "default",
		Stages: []Descriptor{
			{Stage: Initializing, Duration: 1000 * time.Millisecond, Message: msgs[Initializing], Percentage: 10},
			{Stage: ProcessingData, Duration: 2000 * time.Millisecond, Message: msgs[ProcessingData], Percentage: 30},
			{Stage: Validating, Duration: 1500 * time.Millisecond, Message: msgs[Validating], Percentage: 60},
			{Stage: GeneratingReport, Duration: 2500 * time.Millisecond, Message: msgs[GeneratingReport], Percentage: 85},
			{Stage: Finalizing, Duration: 1000 * time.Millisecond, Message: msgs[Finalizing], Percentage: 100},
		},
		CompletedMessage: completedMessages[loc],
	}
}
