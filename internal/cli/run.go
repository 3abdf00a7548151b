package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/codebeauty/loadingsse/internal/log"
	"github.com/codebeauty/loadingsse/internal/sequencer"
	"github.com/codebeauty/loadingsse/internal/stage"
	"github.com/codebeauty/loadingsse/internal/tui"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		scriptFlag string
		localeFlag string
		watch      bool
		autoStart  bool
		exitOnDone bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Show the interactive loading screen",
		Long:  "Opens the loading screen with start, stop and reset controls. Falls back to 'play' when not attached to a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(scriptFlag, localeFlag)
			if err != nil {
				return err
			}

			interactive := tui.IsTTY() && term.IsTerminal(int(os.Stdin.Fd()))
			logger, closeLog, err := getLogger(opts, s.cfg, cmd.ErrOrStderr(), interactive)
			if err != nil {
				return err
			}
			defer closeLog()

			if !interactive {
				logger.Infof("not attached to a terminal, playing once")
				_, err := play(cmd.Context(), playParams{
					session: s,
					out:     cmd.OutOrStdout(),
					logger:  logger,
					signals: true,
				})
				return err
			}

			if watch && s.scriptPath == "" {
				return fmt.Errorf("--watch needs a script file (--script or config defaults.script)")
			}
			return runTUI(cmd.Context(), s, logger, tuiOptions{
				watch:      watch,
				autoStart:  autoStart || s.cfg.Defaults.AutoStart,
				exitOnDone: exitOnDone,
			})
		},
	}

	cmd.Flags().StringVar(&scriptFlag, "script", "", "Stage script YAML file (default: built-in stages)")
	cmd.Flags().StringVar(&localeFlag, "locale", "", "Message locale: en or ja (default: from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the script file when it changes")
	cmd.Flags().BoolVar(&autoStart, "autostart", false, "Start the sequence immediately")
	cmd.Flags().BoolVar(&exitOnDone, "exit-on-done", false, "Quit once the completion banner is dismissed")

	return cmd
}

type tuiOptions struct {
	watch      bool
	autoStart  bool
	exitOnDone bool
}

// runTUI launches the BubbleTea loading screen. The program and the optional
// script watcher run in one errgroup; quitting the program stops the watcher.
func runTUI(ctx context.Context, s *session, logger log.Logger, opts tuiOptions) error {
	seq, err := sequencer.New(sequencer.Config{
		Script:     s.script,
		ResetDelay: s.cfg.Defaults.ResetDelayDuration(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer seq.Stop()

	var watcher *stage.Watcher
	if opts.watch {
		watcher, err = stage.NewWatcher(s.scriptPath, s.locale)
		if err != nil {
			return err
		}
	}

	var program *tea.Program
	model := tui.NewModel(seq, tui.Config{
		Locale:     s.locale,
		ScriptName: s.script.Name,
		AutoStart:  opts.autoStart,
		OnComplete: func() {
			logger.Infof("completion acknowledged")
			if opts.exitOnDone {
				program.Quit()
			}
		},
	})
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := seq.Subscribe(tui.Bridge(program))
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		finalModel, err := program.Run()
		if err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		if m, ok := finalModel.(tui.Model); ok && m.Err != nil {
			return m.Err
		}
		return nil
	})

	if watcher != nil {
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				program.Send(tui.ErrorMsg{Err: err})
				return err
			}
			return nil
		})
		g.Go(func() error {
			forwardReloads(watcher.Events(), seq, program, logger)
			return nil
		})
	}

	return g.Wait()
}

// forwardReloads applies every reloaded script to the sequencer and tells the
// screen about it. It returns when the watcher closes its channel.
func forwardReloads(events <-chan stage.ScriptEvent, seq *sequencer.Sequencer, screen tui.Sender, logger log.Logger) {
	for ev := range events {
		if ev.Error != nil {
			logger.Warningf("script reload failed: %s", ev.Error)
			screen.Send(tui.ScriptReloadedMsg{Err: ev.Error})
			continue
		}
		if err := seq.SetScript(ev.Script); err != nil {
			logger.Warningf("script rejected: %s", err)
			screen.Send(tui.ScriptReloadedMsg{Err: err})
			continue
		}
		screen.Send(tui.ScriptReloadedMsg{Name: ev.Script.Name})
	}
}
