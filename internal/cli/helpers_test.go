package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codebeauty/loadingsse/internal/output"
	"github.com/codebeauty/loadingsse/internal/stage"
)

const fastScriptYAML = `name: fast
completedMessage: All done
stages:
  - stage: initializing
    duration: 1ms
    percentage: 10
  - stage: processing_data
    duration: 1ms
    percentage: 30
  - stage: validating
    duration: 1ms
    percentage: 60
  - stage: generating_report
    duration: 1ms
    percentage: 85
  - stage: finalizing
    duration: 1ms
    percentage: 100
`

// isolateHome keeps tests away from the developer's global config.
func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
}

func writeFastScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fastScriptYAML), 0o600))
	return path
}

// setupRecording creates a recording directory with run.json and summary.md.
func setupRecording(t *testing.T, base, name string, outcome output.Outcome, mtime time.Time) string {
	t.Helper()
	dir := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(dir, 0o700))

	snaps := []stage.Snapshot{
		{RunID: name, Stage: stage.Initializing, Percentage: 10, Message: "Initializing system...", Timestamp: mtime},
	}
	m := output.BuildManifest(name, stage.LocaleEN, mtime, mtime.Add(8*time.Second), snaps, outcome)
	require.NoError(t, output.WriteManifest(dir, m))
	require.NoError(t, output.WriteSummary(dir, output.BuildSummary(m)))
	require.NoError(t, os.Chtimes(dir, mtime, mtime))
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
