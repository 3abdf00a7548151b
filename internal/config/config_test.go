package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebeauty/loadingsse/internal/stage"
)

// isolateHome points the global config lookup at an empty temp directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return home
}

func TestGlobalConfigDir(t *testing.T) {
	home := isolateHome(t)
	assert.Equal(t, filepath.Join(home, "xdg", "loadingsse"), GlobalConfigDir())
	assert.Equal(t, filepath.Join(home, "xdg", "loadingsse", "config.json"), GlobalConfigPath())
}

func TestGlobalConfigDirPrefersMacOSPath(t *testing.T) {
	home := isolateHome(t)
	mac := filepath.Join(home, "Library", "Application Support", "loadingsse")
	require.NoError(t, os.MkdirAll(mac, 0o700))
	assert.Equal(t, mac, GlobalConfigDir())
}

func TestNewDefaults(t *testing.T) {
	cfg := NewDefaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, stage.LocaleEN, cfg.Defaults.Locale)
	assert.Equal(t, 100, cfg.Defaults.ResetDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.Defaults.ResetDelayDuration())
	assert.Equal(t, "./recordings/loadingsse", cfg.Defaults.OutputDir)
	assert.Equal(t, LogFormatText, cfg.Defaults.LogFormat)
	assert.Empty(t, cfg.Defaults.Script)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"japanese", func(c *Config) { c.Defaults.Locale = stage.LocaleJA }, true},
		{"json logs", func(c *Config) { c.Defaults.LogFormat = LogFormatJSON }, true},
		{"zero delay", func(c *Config) { c.Defaults.ResetDelay = 0 }, true},
		{"unknown locale", func(c *Config) { c.Defaults.Locale = "fr" }, false},
		{"unknown log format", func(c *Config) { c.Defaults.LogFormat = "xml" }, false},
		{"negative delay", func(c *Config) { c.Defaults.ResetDelay = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateLogFormat(t *testing.T) {
	f, err := ValidateLogFormat("")
	assert.NoError(t, err)
	assert.Equal(t, LogFormatText, f)

	f, err = ValidateLogFormat("json")
	assert.NoError(t, err)
	assert.Equal(t, LogFormatJSON, f)

	_, err = ValidateLogFormat("yaml")
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")

	data := `{"defaults": {"locale": "ja", "resetDelay": 250, "script": "/tmp/fast.yaml"}}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0o600))

	cfg, err := LoadFromFile(cfgPath)
	assert.NoError(t, err)
	assert.Equal(t, stage.LocaleJA, cfg.Defaults.Locale)
	assert.Equal(t, 250, cfg.Defaults.ResetDelay)
	assert.Equal(t, "/tmp/fast.yaml", cfg.Defaults.Script)
	assert.Equal(t, "./recordings/loadingsse", cfg.Defaults.OutputDir) // default preserved
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromFileUnsafePermissions(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{}`), 0o600))
	require.NoError(t, os.Chmod(cfgPath, 0o666))

	_, err := LoadFromFile(cfgPath)
	assert.ErrorContains(t, err, "unsafe permissions")
}

func TestLoadFromFileInvalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"defaults": {"locale": "de"}}`), 0o600))

	_, err := LoadFromFile(cfgPath)
	assert.ErrorContains(t, err, "validating")

	require.NoError(t, os.WriteFile(cfgPath, []byte(`{not json`), 0o600))
	_, err = LoadFromFile(cfgPath)
	assert.ErrorContains(t, err, "parsing")
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := NewDefaults()
	cfg.Defaults.Locale = stage.LocaleJA
	cfg.Defaults.AutoStart = true

	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, cfg.Defaults, loaded.Defaults)

	info, _ := os.Stat(path)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, _ := os.ReadFile(path)
	assert.NotContains(t, string(data), `"script"`)
}

func TestLoadProjectConfig(t *testing.T) {
	pc, err := LoadProjectConfig("/nonexistent/path")
	assert.NoError(t, err)
	assert.Nil(t, pc)

	dir := t.TempDir()
	data := `{"defaults": {"resetDelay": 300, "script": "scripts/slow.yaml", "outputDir": "./out"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loadingsse.json"), []byte(data), 0o600))

	pc, err = LoadProjectConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, pc)
	assert.Equal(t, 300, *pc.Defaults.ResetDelay)
	assert.Equal(t, filepath.Join(dir, "scripts", "slow.yaml"), *pc.Defaults.Script)
	assert.Equal(t, "./out", *pc.Defaults.OutputDir)
	assert.Nil(t, pc.Defaults.Locale)
}

func TestLoadProjectConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loadingsse.json"), []byte(`{`), 0o600))

	_, err := LoadProjectConfig(dir)
	assert.Error(t, err)
}

func TestMergeWithProject(t *testing.T) {
	cfg := NewDefaults()

	loc := stage.LocaleJA
	delay := 500
	pc := &ProjectConfig{
		Defaults: &ProjectDefaults{
			Locale:     &loc,
			ResetDelay: &delay,
		},
	}

	MergeWithProject(cfg, pc)
	assert.Equal(t, stage.LocaleJA, cfg.Defaults.Locale)
	assert.Equal(t, 500, cfg.Defaults.ResetDelay)
	assert.Equal(t, "./recordings/loadingsse", cfg.Defaults.OutputDir) // unchanged
}

func TestMergeWithProjectNil(t *testing.T) {
	cfg := NewDefaults()
	MergeWithProject(cfg, nil)
	MergeWithProject(cfg, &ProjectConfig{})
	assert.Equal(t, 100, cfg.Defaults.ResetDelay)
}

func TestLoadMerged(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	data := `{"defaults": {"outputDir": "./custom/output"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loadingsse.json"), []byte(data), 0o600))

	cfg, err := LoadMerged(dir)
	assert.NoError(t, err)
	assert.Equal(t, "./custom/output", cfg.Defaults.OutputDir)
	assert.Equal(t, 100, cfg.Defaults.ResetDelay)
}

func TestLoadMergedGlobalThenProject(t *testing.T) {
	isolateHome(t)
	global := NewDefaults()
	global.Defaults.Locale = stage.LocaleJA
	global.Defaults.ResetDelay = 200
	require.NoError(t, Save(global, GlobalConfigPath()))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loadingsse.json"), []byte(`{"defaults": {"resetDelay": 50}}`), 0o600))

	cfg, err := LoadMerged(dir)
	require.NoError(t, err)
	assert.Equal(t, stage.LocaleJA, cfg.Defaults.Locale)
	assert.Equal(t, 50, cfg.Defaults.ResetDelay)
}

func TestLoadMergedRejectsInvalidProject(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loadingsse.json"), []byte(`{"defaults": {"resetDelay": -5}}`), 0o600))

	_, err := LoadMerged(dir)
	assert.Error(t, err)
}

func TestLoadMergedNoProjectConfig(t *testing.T) {
	isolateHome(t)
	cfg, err := LoadMerged(t.TempDir())
	assert.NoError(t, err)
	assert.Equal(t, NewDefaults(), cfg)
}
