package tui

import (
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebeauty/loadingsse/internal/sequencer"
	"github.com/codebeauty/loadingsse/internal/stage"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

type fakeController struct {
	starts, stops, resets int
}

func (f *fakeController) Start() { f.starts++ }
func (f *fakeController) Stop()  { f.stops++ }
func (f *fakeController) Reset() { f.resets++ }

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// run executes a command the way the BubbleTea runtime would, expanding batches.
func run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			run(c)
		}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	result, cmd := m.Update(msg)
	next, ok := result.(Model)
	require.True(t, ok)
	return next, cmd
}

func snapshot(s stage.Stage, pct int, msg string) *stage.Snapshot {
	return &stage.Snapshot{RunID: "run-1", Stage: s, Percentage: pct, Message: msg, Timestamp: time.Now()}
}

func TestStartKeyDispatchesStart(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, Config{})

	m, cmd := update(t, m, keyRune('s'))
	require.NotNil(t, cmd)
	assert.Equal(t, 0, ctrl.starts, "actions run as commands, not inside Update")
	run(cmd)
	assert.Equal(t, 1, ctrl.starts)
}

func TestStartDisabledWhileRunning(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, Config{})
	m, _ = update(t, m, StateMsg{Running: true, RunID: "run-1", Version: 1})

	_, cmd := update(t, m, keyRune('s'))
	assert.Nil(t, cmd)
}

func TestStopDisabledWhenIdle(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, Config{})

	_, cmd := update(t, m, keyRune('x'))
	assert.Nil(t, cmd)

	m, _ = update(t, m, StateMsg{Running: true, RunID: "run-1", Version: 1})
	_, cmd = update(t, m, keyRune('x'))
	run(cmd)
	assert.Equal(t, 1, ctrl.stops)
}

func TestResetAlwaysAvailable(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, Config{})

	_, cmd := update(t, m, keyRune('r'))
	run(cmd)
	assert.Equal(t, 1, ctrl.resets)
}

func TestAutoStart(t *testing.T) {
	ctrl := &fakeController{}
	m := NewModel(ctrl, Config{AutoStart: true})
	run(m.Init())
	assert.Equal(t, 1, ctrl.starts)

	ctrl = &fakeController{}
	m = NewModel(ctrl, Config{})
	run(m.Init())
	assert.Equal(t, 0, ctrl.starts)
}

func TestOutOfOrderStatesDropped(t *testing.T) {
	m := NewModel(&fakeController{}, Config{})
	m, _ = update(t, m, StateMsg{Running: true, Version: 5, Snapshot: snapshot(stage.Validating, 60, "v")})
	m, _ = update(t, m, StateMsg{Running: true, Version: 4, Snapshot: snapshot(stage.ProcessingData, 30, "p")})

	assert.Equal(t, uint64(5), m.State().Version)
	assert.Equal(t, stage.Validating, m.State().Snapshot.Stage)
}

func TestCompletionCallbackAfterDismiss(t *testing.T) {
	calls := 0
	m := NewModel(&fakeController{}, Config{OnComplete: func() { calls++ }})
	m, _ = update(t, m, StateMsg{RunID: "run-1", Cursor: 6, Total: 5, Version: 1,
		Snapshot: snapshot(stage.Completed, 100, "Processing complete")})

	assert.True(t, m.bannerVisible())
	assert.Equal(t, 0, calls, "callback waits for dismissal")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	assert.Equal(t, 1, calls)
	assert.False(t, m.bannerVisible())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	assert.Equal(t, 1, calls, "callback fires once per run")
}

func TestDismissIgnoredWithoutBanner(t *testing.T) {
	calls := 0
	m := NewModel(&fakeController{}, Config{OnComplete: func() { calls++ }})
	m, _ = update(t, m, StateMsg{Running: true, RunID: "run-1", Version: 1,
		Snapshot: snapshot(stage.Finalizing, 100, "f")})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, calls)
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyRune('q'), {Type: tea.KeyCtrlC}} {
		m := NewModel(&fakeController{}, Config{})
		m, cmd := update(t, m, k)
		assert.True(t, m.Quitting())
		assert.NotNil(t, cmd)
	}
}

func TestErrorMsgQuits(t *testing.T) {
	m := NewModel(&fakeController{}, Config{})
	m, cmd := update(t, m, ErrorMsg{Err: assert.AnError})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), assert.AnError.Error())
}

func TestViewIdlePrompt(t *testing.T) {
	m := NewModel(&fakeController{}, Config{ScriptName: "default"})
	v := m.View()
	assert.Contains(t, v, "Loading Progress")
	assert.Contains(t, v, "(default)")
	assert.Contains(t, v, "Press s to start processing")
}

func TestViewRunningSnapshot(t *testing.T) {
	m := NewModel(&fakeController{}, Config{})
	m, _ = update(t, m, StateMsg{Running: true, RunID: "run-1", Cursor: 3, Total: 5, Version: 1,
		Snapshot: snapshot(stage.Validating, 60, "Validating data...")})

	v := m.View()
	assert.Contains(t, v, "Validating")
	assert.Contains(t, v, "60%")
	assert.Contains(t, v, "Validating data...")
	assert.Contains(t, v, "3/5")
	assert.NotContains(t, v, "Press s to start")
	assert.NotContains(t, v, "Processing complete")
}

func TestViewStartingBeforeFirstTick(t *testing.T) {
	m := NewModel(&fakeController{}, Config{})
	m, _ = update(t, m, StateMsg{Running: true, RunID: "run-1", Version: 1})
	assert.Contains(t, m.View(), "Starting...")

	m, _ = update(t, m, StateMsg{Restarting: true, Version: 2})
	assert.Contains(t, m.View(), "Restarting...")
}

func TestViewCompletedBanner(t *testing.T) {
	m := NewModel(&fakeController{}, Config{})
	m, _ = update(t, m, StateMsg{RunID: "run-1", Cursor: 6, Total: 5, Version: 1,
		Snapshot: snapshot(stage.Completed, 100, "Processing complete")})

	v := m.View()
	assert.Contains(t, v, "Completed")
	assert.Contains(t, v, "100%")
	assert.Contains(t, v, "enter:dismiss")
}

func TestViewJapanese(t *testing.T) {
	m := NewModel(&fakeController{}, Config{Locale: stage.LocaleJA})
	assert.Contains(t, m.View(), "SSE ローディング画面")

	m, _ = update(t, m, StateMsg{Running: true, RunID: "run-1", Cursor: 2, Total: 5, Version: 1,
		Snapshot: snapshot(stage.ProcessingData, 30, "データを処理しています...")})
	assert.Contains(t, m.View(), "データ処理")
}

func TestScriptReloadedNotice(t *testing.T) {
	m := NewModel(&fakeController{}, Config{})
	m, _ = update(t, m, ScriptReloadedMsg{Name: "fast"})
	assert.Contains(t, m.View(), "script fast loaded")

	m, _ = update(t, m, ScriptReloadedMsg{Err: assert.AnError})
	assert.Contains(t, m.View(), "script not reloaded")
}

type fakeSender struct{ msgs []tea.Msg }

func (f *fakeSender) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestBridgeForwardsStates(t *testing.T) {
	s := &fakeSender{}
	listener := Bridge(s)
	listener(sequencer.State{RunID: "a", Version: 1})
	listener(sequencer.State{RunID: "a", Version: 2, Running: true})

	require.Len(t, s.msgs, 2)
	assert.Equal(t, StateMsg{RunID: "a", Version: 2, Running: true}, s.msgs[1])
}

func TestStageLabelsAndColors(t *testing.T) {
	for _, s := range stage.All {
		assert.NotEqual(t, string(s), StageLabel(s, stage.LocaleEN), "label for %s", s)
		assert.NotEqual(t, string(s), StageLabel(s, stage.LocaleJA), "label for %s", s)
		assert.NotEmpty(t, StageColor(s))
	}
	assert.Equal(t, "mystery", StageLabel("mystery", stage.LocaleEN))
	assert.Equal(t, defaultStageColor, StageColor("mystery"))
	assert.Equal(t, "Finalizing", StageLabel(stage.Finalizing, stage.Locale("xx")))
	assert.Equal(t, "#722ed1", StageColor(stage.GeneratingReport))
}
