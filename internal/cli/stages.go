package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codebeauty/loadingsse/internal/stage"
	"github.com/codebeauty/loadingsse/internal/tui"
)

type jsonStage struct {
	Stage      stage.Stage `json:"stage"`
	Label      string      `json:"label"`
	Start      string      `json:"start"`
	Duration   string      `json:"duration"`
	Percentage int         `json:"percentage"`
	Message    string      `json:"message"`
}

func newStagesCmd() *cobra.Command {
	var (
		scriptFlag string
		localeFlag string
		jsonOut    bool
		yamlOut    bool
	)

	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the stages a run will step through",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(scriptFlag, localeFlag)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if yamlOut {
				data, err := stage.MarshalScript(s.script)
				if err != nil {
					return fmt.Errorf("encoding script: %w", err)
				}
				_, err = w.Write(data)
				return err
			}

			rows := stageRows(s.script, s.locale)
			if jsonOut {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			fmt.Fprintf(w, "%s %s\n\n", tui.StyleTitle.Render(s.script.Name), tui.Badge(s.script.TotalDuration().String()))
			table := tui.Table{Headers: []string{"#", "STAGE", "AT", "FOR", "PROGRESS", "MESSAGE"}}
			for i, r := range rows {
				table.Rows = append(table.Rows, []string{
					fmt.Sprintf("%d", i+1),
					tui.StageStyle(r.Stage).Render(r.Label),
					r.Start,
					r.Duration,
					fmt.Sprintf("%d%%", r.Percentage),
					r.Message,
				})
			}
			fmt.Fprint(w, table.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptFlag, "script", "", "Stage script YAML file (default: built-in stages)")
	cmd.Flags().StringVar(&localeFlag, "locale", "", "Message locale: en or ja (default: from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&yamlOut, "yaml", false, "Print the script as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}

// stageRows lists every emission of a run, including the completed snapshot,
// with the offset at which it appears.
func stageRows(script stage.Script, loc stage.Locale) []jsonStage {
	rows := make([]jsonStage, 0, len(script.Stages)+1)
	var at time.Duration
	for _, d := range script.Stages {
		rows = append(rows, jsonStage{
			Stage:      d.Stage,
			Label:      tui.StageLabel(d.Stage, loc),
			Start:      at.String(),
			Duration:   d.Duration.String(),
			Percentage: d.Percentage,
			Message:    d.Message,
		})
		at += d.Duration
	}
	done := script.CompletedSnapshot("", time.Time{})
	rows = append(rows, jsonStage{
		Stage:      done.Stage,
		Label:      tui.StageLabel(done.Stage, loc),
		Start:      at.String(),
		Duration:   "0s",
		Percentage: done.Percentage,
		Message:    done.Message,
	})
	return rows
}
