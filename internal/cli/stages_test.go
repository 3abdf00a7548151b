package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebeauty/loadingsse/internal/stage"
)

func TestStageRows(t *testing.T) {
	rows := stageRows(stage.DefaultScript(stage.LocaleEN), stage.LocaleEN)
	require.Len(t, rows, 6)

	starts := []string{"0s", "1s", "3s", "4.5s", "7s", "8s"}
	for i, r := range rows {
		assert.Equal(t, starts[i], r.Start, "row %d", i)
	}
	assert.Equal(t, stage.Completed, rows[5].Stage)
	assert.Equal(t, "Processing complete", rows[5].Message)
	assert.Equal(t, 100, rows[5].Percentage)
}

func TestStagesCommand(t *testing.T) {
	isolateHome(t)

	t.Run("table", func(t *testing.T) {
		stdout, _, err := execute(t, "stages", "--no-color")
		require.NoError(t, err)
		assert.Contains(t, stdout, "default")
		assert.Contains(t, stdout, "Generating report")
		assert.Contains(t, stdout, "Generating report...")
	})

	t.Run("json japanese", func(t *testing.T) {
		stdout, _, err := execute(t, "stages", "--json", "--locale", "ja")
		require.NoError(t, err)
		var rows []jsonStage
		require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
		require.Len(t, rows, 6)
		assert.Equal(t, "処理が完了しました", rows[5].Message)
	})

	t.Run("yaml round trips", func(t *testing.T) {
		stdout, _, err := execute(t, "stages", "--yaml", "--script", writeFastScript(t))
		require.NoError(t, err)
		script, err := stage.ParseScript([]byte(stdout), stage.LocaleEN)
		require.NoError(t, err)
		assert.Equal(t, "fast", script.Name)
		assert.Len(t, script.Stages, 5)
	})

	t.Run("json and yaml are exclusive", func(t *testing.T) {
		_, _, err := execute(t, "stages", "--json", "--yaml")
		assert.Error(t, err)
	})
}
