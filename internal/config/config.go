package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codebeauty/loadingsse/internal/stage"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

type Config struct {
	Version  int            `json:"version"`
	Defaults DefaultsConfig `json:"defaults"`
}

type DefaultsConfig struct {
	Locale     stage.Locale `json:"locale"`
	ResetDelay int          `json:"resetDelay"` // milliseconds
	Script     string       `json:"script,omitempty"`
	OutputDir  string       `json:"outputDir"`
	LogFormat  LogFormat    `json:"logFormat"`
	AutoStart  bool         `json:"autoStart"`
}

func NewDefaults() *Config {
	return &Config{
		Version: 1,
		Defaults: DefaultsConfig{
			Locale:     stage.LocaleEN,
			ResetDelay: 100,
			OutputDir:  "./recordings/loadingsse",
			LogFormat:  LogFormatText,
		},
	}
}

// ResetDelayDuration returns the reset delay as a duration.
func (d DefaultsConfig) ResetDelayDuration() time.Duration {
	return time.Duration(d.ResetDelay) * time.Millisecond
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	if _, err := stage.ParseLocale(string(c.Defaults.Locale)); err != nil {
		return err
	}
	if _, err := ValidateLogFormat(string(c.Defaults.LogFormat)); err != nil {
		return err
	}
	if c.Defaults.ResetDelay < 0 {
		return fmt.Errorf("invalid resetDelay %d: must not be negative", c.Defaults.ResetDelay)
	}
	return nil
}

func ValidateLogFormat(format string) (LogFormat, error) {
	switch LogFormat(format) {
	case LogFormatText, LogFormatJSON:
		return LogFormat(format), nil
	case "":
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}

func GlobalConfigDir() string {
	home := os.Getenv("HOME")
	macOSPath := filepath.Join(home, "Library", "Application Support", "loadingsse")
	if _, err := os.Stat(macOSPath); err == nil {
		return macOSPath
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loadingsse")
	}
	return filepath.Join(home, ".config", "loadingsse")
}

func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.json")
}

func LoadFromFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	// Security: refuse to load config writable by group/others
	if info.Mode().Perm()&0o022 != 0 {
		return nil, fmt.Errorf("config %s has unsafe permissions %o (writable by group/others)", path, info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewDefaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// ProjectDefaults holds per-project overrides loaded from .loadingsse.json.
type ProjectDefaults struct {
	Locale     *stage.Locale `json:"locale,omitempty"`
	ResetDelay *int          `json:"resetDelay,omitempty"`
	Script     *string       `json:"script,omitempty"`
	OutputDir  *string       `json:"outputDir,omitempty"`
}

// ProjectConfig represents a .loadingsse.json file in the project root.
type ProjectConfig struct {
	Defaults *ProjectDefaults `json:"defaults,omitempty"`
}

// LoadProjectConfig reads .loadingsse.json from dir. Returns nil if not found.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, ".loadingsse.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading project config: %w", err)
	}
	var pc ProjectConfig
	if err := json.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	// A relative script path is resolved against the project directory.
	if pc.Defaults != nil && pc.Defaults.Script != nil && *pc.Defaults.Script != "" && !filepath.IsAbs(*pc.Defaults.Script) {
		abs := filepath.Join(dir, *pc.Defaults.Script)
		pc.Defaults.Script = &abs
	}
	return &pc, nil
}

// MergeWithProject applies project-level overrides to the global config.
func MergeWithProject(cfg *Config, pc *ProjectConfig) {
	if pc == nil || pc.Defaults == nil {
		return
	}
	d := pc.Defaults
	if d.Locale != nil {
		cfg.Defaults.Locale = *d.Locale
	}
	if d.ResetDelay != nil {
		cfg.Defaults.ResetDelay = *d.ResetDelay
	}
	if d.Script != nil {
		cfg.Defaults.Script = *d.Script
	}
	if d.OutputDir != nil {
		cfg.Defaults.OutputDir = *d.OutputDir
	}
}

func Load() (*Config, error) {
	path := GlobalConfigPath()
	cfg, err := LoadFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefaults(), nil
		}
		return nil, fmt.Errorf("global config: %w", err)
	}
	return cfg, nil
}

// LoadMerged loads global config, then merges project-level overrides from
// the .loadingsse.json in the given directory.
func LoadMerged(projectDir string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	pc, err := LoadProjectConfig(projectDir)
	if err != nil {
		return nil, fmt.Errorf("project config: %w", err)
	}
	MergeWithProject(cfg, pc)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("project config: %w", err)
	}
	return cfg, nil
}

func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return atomicWrite(path, data, 0o600)
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".loadingsse-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
