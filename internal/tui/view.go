package tui

import (
	"fmt"
	"strings"

	"github.com/codebeauty/loadingsse/internal/sequencer"
)

func (m Model) View() string {
	if m.Err != nil {
		return StyleError.Render("  Error: "+m.Err.Error()) + "\n"
	}
	if m.quitting {
		return ""
	}

	var b strings.Builder

	header := StyleTitle.Render(m.text.Title)
	if m.cfg.ScriptName != "" {
		header += " " + Badge(m.cfg.ScriptName)
	}
	b.WriteString(header + "\n\n")
	b.WriteString(m.controlsView() + "\n")

	st := m.state
	switch {
	case st.Snapshot != nil:
		b.WriteString("\n" + m.snapshotView(st))
	case st.Restarting:
		b.WriteString(fmt.Sprintf("\n%s %s\n", m.spinner.View(), StyleMuted.Render(m.text.Restarting)))
	case st.Running:
		b.WriteString(fmt.Sprintf("\n%s %s\n", m.spinner.View(), StyleMuted.Render(m.text.Starting)))
	default:
		b.WriteString("\n" + StyleBannerInfo.Render(IconInfo+" "+m.text.Prompt) + "\n")
	}

	card := StyleCard.Render(strings.TrimRight(b.String(), "\n"))

	var out strings.Builder
	out.WriteString(card + "\n")
	if m.notice != "" {
		out.WriteString("  " + m.notice + "\n")
	}
	return out.String()
}

func (m Model) snapshotView(st sequencer.State) string {
	snap := st.Snapshot
	var b strings.Builder

	label := StageStyle(snap.Stage).Bold(true).Render(StageLabel(snap.Stage, m.cfg.Locale))
	if st.Running {
		b.WriteString(fmt.Sprintf("%s %s  %s\n\n", m.spinner.View(), label,
			StyleMuted.Render(fmt.Sprintf("%d/%d", st.Cursor, st.Total))))
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n\n", IconSuccess, label))
	}

	bar := m.bar
	bar.FullColor = StageColor(snap.Stage)
	b.WriteString(bar.ViewAs(float64(snap.Percentage)/100) + "\n\n")

	b.WriteString(StyleMuted.Render(snap.Message) + "\n")

	if m.bannerVisible() {
		banner := IconSuccess + " " + m.text.Done + "  " + StyleMuted.Render(m.text.Dismiss)
		b.WriteString("\n" + StyleBannerSuccess.Render(banner) + "\n")
	}
	return b.String()
}

// controlsView renders the three actions, dimming the ones that are disabled.
func (m Model) controlsView() string {
	running := m.state.Running
	control := func(k, label string, enabled bool) string {
		text := k + ":" + label
		if !enabled {
			return StyleMuted.Render(text)
		}
		return StyleBold.Render(k) + ":" + label
	}
	return strings.Join([]string{
		control(Keys.Start.Help().Key, Keys.Start.Help().Desc, !running),
		control(Keys.Stop.Help().Key, Keys.Stop.Help().Desc, running),
		control(Keys.Reset.Help().Key, Keys.Reset.Help().Desc, true),
		StyleMuted.Render(Keys.Quit.Help().Key + ":" + Keys.Quit.Help().Desc),
	}, "  ")
}
