package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codebeauty/loadingsse/internal/config"
	"github.com/codebeauty/loadingsse/internal/stage"
	"github.com/codebeauty/loadingsse/internal/tui"
)

var profileNames = map[termenv.Profile]string{
	termenv.TrueColor: "true color",
	termenv.ANSI256:   "256 colors",
	termenv.ANSI:      "16 colors",
	termenv.Ascii:     "no color",
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, script and terminal support",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.ErrOrStderr()
			rich := tui.IsTTY()
			failed := false

			pass := func(msg string) {
				if rich {
					fmt.Fprintf(w, "  %s %s\n", tui.IconSuccess, msg)
				} else {
					fmt.Fprintf(w, "✓ %s\n", msg)
				}
			}
			fail := func(msg string) {
				failed = true
				if rich {
					fmt.Fprintf(w, "  %s %s\n", tui.IconError, msg)
				} else {
					fmt.Fprintf(w, "✗ %s\n", msg)
				}
			}
			warn := func(msg string) {
				if rich {
					fmt.Fprintf(w, "  %s %s\n", tui.IconWarning, msg)
				} else {
					fmt.Fprintf(w, "⚠ %s\n", msg)
				}
			}
			section := func(name string) {
				if rich {
					fmt.Fprintf(w, "\n  %s\n", lipgloss.NewStyle().Bold(true).Render(name))
				}
			}

			// 1. Config
			section("Config")
			cfgPath := config.GlobalConfigPath()
			if _, err := os.Stat(cfgPath); err != nil {
				warn(fmt.Sprintf("Config file not found: %s (using defaults)", cfgPath))
			} else {
				pass(fmt.Sprintf("Config file: %s", cfgPath))
			}
			if _, err := os.Stat(filepath.Join(mustGetwd(), ".loadingsse.json")); err == nil {
				pass("Project override: .loadingsse.json")
			}

			cfg, err := config.LoadMerged(mustGetwd())
			if err != nil {
				fail(fmt.Sprintf("Config invalid: %s", err))
				return fmt.Errorf("config validation failed")
			}
			pass(fmt.Sprintf("Config loaded (locale %s, reset delay %s)", cfg.Defaults.Locale, cfg.Defaults.ResetDelayDuration()))

			// 2. Script
			section("Script")
			if cfg.Defaults.Script == "" {
				script := stage.DefaultScript(cfg.Defaults.Locale)
				pass(fmt.Sprintf("Built-in script: %d stages, %s", len(script.Stages), script.TotalDuration()))
			} else if script, err := stage.LoadScript(cfg.Defaults.Script, cfg.Defaults.Locale); err != nil {
				fail(fmt.Sprintf("Script invalid: %s", err))
			} else {
				pass(fmt.Sprintf("Script %s: %d stages, %s", script.Name, len(script.Stages), script.TotalDuration()))
			}

			// 3. Output directory
			section("Recordings")
			if err := checkWritable(cfg.Defaults.OutputDir); err != nil {
				fail(fmt.Sprintf("Output dir %s not writable: %s", cfg.Defaults.OutputDir, err))
			} else {
				pass(fmt.Sprintf("Output dir: %s", cfg.Defaults.OutputDir))
			}

			// 4. Terminal
			section("Terminal")
			stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
			stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Fprintf(w, "  %s stdin is a terminal\n", tui.EnabledIcon(stdinTTY))
			fmt.Fprintf(w, "  %s stdout is a terminal\n", tui.EnabledIcon(stdoutTTY))
			if stdinTTY && stdoutTTY {
				pass("Interactive screen available ('run')")
			} else {
				warn("No interactive terminal: 'run' falls back to 'play'")
			}
			profile := termenv.NewOutput(os.Stdout).Profile
			pass(fmt.Sprintf("Color support: %s", profileNames[profile]))

			if failed {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}

// checkWritable reports whether dir, or its nearest existing parent, accepts
// new files. Nothing is left behind.
func checkWritable(dir string) error {
	for {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	f, err := os.CreateTemp(dir, ".loadingsse-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
