package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/codebeauty/loadingsse/internal/sequencer"
	"github.com/codebeauty/loadingsse/internal/stage"
)

// Controller is the set of actions the screen can trigger. *sequencer.Sequencer
// satisfies it.
type Controller interface {
	Start()
	Stop()
	Reset()
}

// Config holds the inputs needed to drive the progress screen.
type Config struct {
	Locale     stage.Locale
	ScriptName string
	AutoStart  bool   // start a run as soon as the program starts
	OnComplete func() // called once per run, after the completion banner is dismissed
}

// Model is the top-level BubbleTea model for `loadingsse run`. It only reads
// sequencer state; user actions are handed to the controller as commands.
type Model struct {
	ctrl     Controller
	cfg      Config
	text     screenText
	state    sequencer.State
	spinner  spinner.Model
	bar      progress.Model
	notice   string
	Err      error
	quitting bool

	// dismissed is the run ID whose completion banner was closed.
	dismissed string
}

// NewModel creates the progress screen model.
func NewModel(ctrl Controller, cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StylePrimary

	bar := progress.New(
		progress.WithSolidFill(defaultStageColor),
		progress.WithWidth(cardWidth-16),
		progress.WithColorProfile(lipgloss.ColorProfile()),
	)

	return Model{
		ctrl:    ctrl,
		cfg:     cfg,
		text:    textFor(cfg.Locale),
		spinner: s,
		bar:     bar,
	}
}

// State returns the last state the model applied.
func (m Model) State() sequencer.State { return m.state }

func (m Model) Init() tea.Cmd {
	if m.cfg.AutoStart {
		return tea.Batch(m.do(m.ctrl.Start), m.spinner.Tick)
	}
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case StateMsg:
		st := sequencer.State(msg)
		if st.Version <= m.state.Version {
			return m, nil // delivered out of order
		}
		m.state = st
		return m, nil

	case ScriptReloadedMsg:
		if msg.Err != nil {
			m.notice = StyleWarning.Render("script not reloaded: " + msg.Err.Error())
		} else {
			m.notice = StyleMuted.Render("script " + msg.Name + " loaded, applies to the next run")
		}
		return m, nil

	case ErrorMsg:
		m.Err = msg.Err
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, Keys.Start):
		if m.state.Running {
			return m, nil // start is disabled while running
		}
		m.notice = ""
		return m, m.do(m.ctrl.Start)

	case key.Matches(msg, Keys.Stop):
		if !m.state.Running {
			return m, nil
		}
		return m, m.do(m.ctrl.Stop)

	case key.Matches(msg, Keys.Reset):
		m.notice = ""
		return m, m.do(m.ctrl.Reset)

	case key.Matches(msg, Keys.Dismiss):
		if !m.bannerVisible() {
			return m, nil
		}
		m.dismissed = m.state.RunID
		if m.cfg.OnComplete == nil {
			return m, nil
		}
		return m, m.do(m.cfg.OnComplete)
	}
	return m, nil
}

// do wraps an action in a command so it never runs on the event loop. The
// sequencer notifies listeners synchronously and the bridge blocks on Send.
func (m Model) do(action func()) tea.Cmd {
	return func() tea.Msg {
		action()
		return nil
	}
}

func (m Model) bannerVisible() bool {
	return m.state.Completed() && m.dismissed != m.state.RunID
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool { return m.quitting }
