package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codebeauty/loadingsse/internal/config"
	"github.com/codebeauty/loadingsse/internal/tui"
)

var jsonKeyRe = regexp.MustCompile(`^(\s*)"([^"]+)":`)

func colorizeJSON(line string) string {
	if m := jsonKeyRe.FindStringSubmatchIndex(line); m != nil {
		indent := line[:m[2*1+1]]
		key := line[m[2*2]:m[2*2+1]]
		rest := line[m[1]:]
		return indent + tui.StylePrimary.Render(`"`+key+`":`) + rest
	}
	return line
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			if tui.IsTTY() {
				fmt.Fprintf(stderr, "%s %s\n\n",
					tui.StyleBold.Render("Config file:"),
					config.GlobalConfigPath())
			} else {
				fmt.Fprintf(stderr, "Config file: %s\n\n", config.GlobalConfigPath())
			}

			cfg, err := config.LoadMerged(mustGetwd())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}

			w := cmd.OutOrStdout()
			if tui.IsTTY() {
				for _, line := range strings.Split(string(data), "\n") {
					fmt.Fprintln(w, colorizeJSON(line))
				}
			} else {
				fmt.Fprintln(w, string(data))
			}
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default global config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GlobalConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := config.Save(config.NewDefaults(), path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %s\n", tui.IconSuccess, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}
