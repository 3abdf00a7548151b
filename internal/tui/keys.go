package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Reset   key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

var Keys = KeyMap{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "dismiss"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}
