package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codebeauty/loadingsse/internal/output"
)

type jsonCandidate struct {
	Name    string         `json:"name"`
	Path    string         `json:"path"`
	Mtime   time.Time      `json:"mtime"`
	Script  string         `json:"script,omitempty"`
	Outcome output.Outcome `json:"outcome,omitempty"`
}

func toJSONCandidates(candidates []output.Candidate) []jsonCandidate {
	jc := make([]jsonCandidate, len(candidates))
	for i, c := range candidates {
		jc[i] = jsonCandidate{Name: c.Name, Path: c.Path, Mtime: c.Mtime}
		if c.Manifest != nil {
			jc[i].Script = c.Manifest.Script
			jc[i].Outcome = c.Manifest.Outcome
		}
	}
	return jc
}

func newCleanupCmd() *cobra.Command {
	var (
		olderThan string
		outputDir string
		dryRun    bool
		yes       bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			dur, err := output.ParseDuration(olderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than: %w", err)
			}

			baseDir, err := resolveOutputDir(outputDir)
			if err != nil {
				return err
			}

			cutoff := time.Now().Add(-dur)
			candidates, err := output.ScanCandidates(baseDir, cutoff)
			if err != nil {
				return err
			}

			if len(candidates) == 0 {
				if jsonOut {
					fmt.Fprintln(cmd.OutOrStdout(), "[]")
				} else {
					fmt.Fprintln(stderr, "No recordings to clean up.")
				}
				return nil
			}

			if dryRun {
				if jsonOut {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(toJSONCandidates(candidates))
				}
				fmt.Fprintf(stderr, "Would remove %d recording(s):\n", len(candidates))
				for _, c := range candidates {
					fmt.Fprintf(stderr, "  %s (modified %s)\n", c.Name, c.Mtime.Format(time.RFC3339))
				}
				return nil
			}

			if !yes {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return fmt.Errorf("refusing to delete without --yes in non-interactive mode")
				}
				fmt.Fprintf(stderr, "Will remove %d recording(s):\n", len(candidates))
				for _, c := range candidates {
					fmt.Fprintf(stderr, "  %s\n", c.Name)
				}
				fmt.Fprintf(stderr, "\nProceed? [y/N] ")
				var answer string
				fmt.Fscanln(cmd.InOrStdin(), &answer)
				if answer != "y" && answer != "Y" {
					fmt.Fprintln(stderr, "Cancelled.")
					return nil
				}
			}

			removed := make([]output.Candidate, 0, len(candidates))
			for _, c := range candidates {
				if err := os.RemoveAll(c.Path); err != nil {
					fmt.Fprintf(stderr, "  error removing %s: %v\n", c.Name, err)
					continue
				}
				removed = append(removed, c)
				if !jsonOut {
					fmt.Fprintf(stderr, "  removed: %s\n", c.Name)
				}
			}
			fmt.Fprintf(stderr, "Removed %d recording(s)\n", len(removed))

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(toJSONCandidates(removed))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "1d", "Age threshold (e.g., 1d, 2w, 30m)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without deleting")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	return cmd
}
