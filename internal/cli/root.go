package cli

import (
	"github.com/spf13/cobra"

	"github.com/codebeauty/loadingsse/internal/tui"
)

var version = "dev"

// rootOptions are the flags shared by every command.
type rootOptions struct {
	debug     bool
	logFile   string
	logFormat string
	noColor   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "loadingsse",
		Short:         "Simulated multi-stage loading progress for the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				tui.DisableColor()
			}
		},
	}

	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (default: from config)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newStagesCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newCleanupCmd())
	root.AddCommand(newDoctorCmd())

	return root
}

func Execute() error {
	return newRootCmd().Execute()
}
