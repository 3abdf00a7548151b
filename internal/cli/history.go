package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codebeauty/loadingsse/internal/output"
	"github.com/codebeauty/loadingsse/internal/tui"
)

func newHistoryCmd() *cobra.Command {
	var (
		outputDir string
		limit     int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := resolveOutputDir(outputDir)
			if err != nil {
				return err
			}

			runs, err := output.ScanRuns(baseDir)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No recordings found.")
				return nil
			}

			if limit > 0 && limit < len(runs) {
				runs = runs[:limit]
			}

			if jsonOut {
				manifests := []*output.Manifest{}
				for _, r := range runs {
					if r.Manifest != nil {
						manifests = append(manifests, r.Manifest)
					}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(manifests)
			}

			w := cmd.OutOrStdout()
			for _, r := range runs {
				m := r.Manifest
				if m == nil {
					continue
				}
				fmt.Fprintln(w, tui.Separator(r.Mtime.Format("2006-01-02 15:04")))
				fmt.Fprintf(w, "  %s %s  %s\n", tui.StatusIcon(string(m.Outcome)), m.Script, tui.Badge(m.Duration))
				if n := len(m.Timeline); n > 0 {
					last := m.Timeline[n-1]
					fmt.Fprintf(w, "  Last:   %s %d%%\n", tui.StageLabel(last.Stage, m.Locale), last.Percentage)
				}
				fmt.Fprintf(w, "  Path:   %s\n\n", r.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: from config)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of recordings to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON array of recordings")

	cmd.AddCommand(newHistoryLatestCmd())

	return cmd
}

func newHistoryLatestCmd() *cobra.Command {
	var (
		outputDir string
		showPath  bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := resolveOutputDir(outputDir)
			if err != nil {
				return err
			}

			runs, err := output.ScanRuns(baseDir)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return fmt.Errorf("no recordings found in %s", baseDir)
			}
			latest := runs[0]

			if showPath {
				fmt.Fprintln(cmd.OutOrStdout(), latest.Path)
				return nil
			}

			if jsonOut {
				if latest.Manifest == nil {
					return fmt.Errorf("reading recording: %s/run.json is not valid", latest.Path)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(latest.Manifest)
			}

			data, err := os.ReadFile(filepath.Join(latest.Path, "summary.md"))
			if err != nil {
				if latest.Manifest == nil {
					return fmt.Errorf("reading summary: %w", err)
				}
				data = []byte(output.BuildSummary(latest.Manifest))
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: from config)")
	cmd.Flags().BoolVar(&showPath, "path", false, "Print the recording directory instead of its summary")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print run.json instead of the summary")

	return cmd
}
