package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/codebeauty/loadingsse/internal/sequencer"
)

// StateMsg carries a sequencer state into the BubbleTea loop.
type StateMsg sequencer.State

// ScriptReloadedMsg is sent when the watched script file changes.
type ScriptReloadedMsg struct {
	Name string
	Err  error
}

type ErrorMsg struct {
	Err error
}

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge returns a sequencer listener that forwards every state to the program.
func Bridge(p Sender) sequencer.Listener {
	return func(st sequencer.State) {
		p.Send(StateMsg(st))
	}
}
