package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/codebeauty/loadingsse/internal/sequencer"
	"github.com/codebeauty/loadingsse/internal/stage"
	"github.com/codebeauty/loadingsse/internal/tui"
)

const barWidth = 30

// Progress prints sequencer snapshots as text lines. On a terminal the current
// line is redrawn in place; otherwise every snapshot gets its own line.
type Progress struct {
	w       io.Writer
	locale  stage.Locale
	jsonOut bool
	isTTY   bool

	mu      sync.Mutex
	last    *stage.Snapshot
	version uint64
	drawn   bool
}

// NewProgress creates a printer writing to w.
func NewProgress(w io.Writer, loc stage.Locale, jsonOut bool) *Progress {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &Progress{
		w:       w,
		locale:  loc,
		jsonOut: jsonOut,
		isTTY:   isTTY && !jsonOut,
	}
}

// Listener adapts the printer to a sequencer subscription.
func (p *Progress) Listener() sequencer.Listener {
	return p.Render
}

// Render prints st when it carries a snapshot not printed yet.
func (p *Progress) Render(st sequencer.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st.Version <= p.version {
		return
	}
	p.version = st.Version
	if st.Snapshot == nil || st.Snapshot == p.last {
		return
	}
	p.last = st.Snapshot

	if p.jsonOut {
		data, err := json.Marshal(st.Snapshot)
		if err != nil {
			return
		}
		fmt.Fprintln(p.w, string(data))
		return
	}

	line := FormatLine(*st.Snapshot, p.locale)
	if p.isTTY {
		if p.drawn {
			fmt.Fprint(p.w, "\r\033[2K")
		}
		fmt.Fprint(p.w, line)
		p.drawn = true
		if st.Snapshot.Stage.Terminal() {
			fmt.Fprintln(p.w)
			p.drawn = false
		}
		return
	}
	fmt.Fprintln(p.w, line)
}

// Finish terminates a line left open by an in-place redraw.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

// FormatLine renders one snapshot as "[#####-----] 60% Validating  message".
func FormatLine(s stage.Snapshot, loc stage.Locale) string {
	filled := s.Percentage * barWidth / 100
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	label := tui.StageLabel(s.Stage, loc)
	return fmt.Sprintf("[%s] %3d%% %-18s %s", bar, s.Percentage, label, s.Message)
}
