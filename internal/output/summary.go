package output

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BuildSummary renders a recording as markdown.
func BuildSummary(m *Manifest) string {
	var b strings.Builder

	b.WriteString("# Run Summary\n\n")
	fmt.Fprintf(&b, "**Run:** %s\n", m.RunID)
	fmt.Fprintf(&b, "**Script:** %s\n", m.Script)
	fmt.Fprintf(&b, "**Outcome:** %s %s\n", outcomeIcon(m.Outcome), m.Outcome)
	fmt.Fprintf(&b, "**Duration:** %s\n", m.Duration)

	b.WriteString("\n## Timeline\n")
	if len(m.Timeline) == 0 {
		b.WriteString("\nNo snapshots were emitted.\n")
		return b.String()
	}
	b.WriteString("| Offset | Stage | Progress | Message |\n")
	b.WriteString("|--------|-------|----------|---------|\n")
	for _, e := range m.Timeline {
		fmt.Fprintf(&b, "| %s | %s | %d%% | %s |\n", e.Offset, e.Stage, e.Percentage, escapeCell(e.Message))
	}
	return b.String()
}

// WriteSummary writes summary.md atomically to the given directory.
func WriteSummary(dir, content string) error {
	return AtomicWrite(filepath.Join(dir, "summary.md"), []byte(content), 0o600)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func outcomeIcon(o Outcome) string {
	switch o {
	case OutcomeCompleted:
		return "✓"
	case OutcomeStopped:
		return "■"
	default:
		return "✗"
	}
}
