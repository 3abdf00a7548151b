package cli

import (
	"fmt"
	"os"

	"github.com/codebeauty/loadingsse/internal/config"
	"github.com/codebeauty/loadingsse/internal/stage"
)

// session is the resolved input of a run: merged config, locale and script.
type session struct {
	cfg        *config.Config
	locale     stage.Locale
	script     stage.Script
	scriptPath string
}

func loadSession(scriptFlag, localeFlag string) (*session, error) {
	cfg, err := config.LoadMerged(mustGetwd())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	loc := cfg.Defaults.Locale
	if localeFlag != "" {
		loc, err = stage.ParseLocale(localeFlag)
		if err != nil {
			return nil, err
		}
	}

	s := &session{cfg: cfg, locale: loc, scriptPath: cfg.Defaults.Script}
	if scriptFlag != "" {
		s.scriptPath = scriptFlag
	}

	if s.scriptPath == "" {
		s.script = stage.DefaultScript(loc)
		return s, nil
	}
	s.script, err = stage.LoadScript(s.scriptPath, loc)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// resolveOutputDir returns the flag value if non-empty, otherwise loads the
// merged config and returns the configured output directory.
func resolveOutputDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.LoadMerged(mustGetwd())
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	return cfg.Defaults.OutputDir, nil
}
