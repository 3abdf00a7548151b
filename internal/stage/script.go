package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// scriptFile is the on-disk YAML shape of a script.
type scriptFile struct {
	Name             string           `yaml:"name"`
	CompletedMessage string           `yaml:"completedMessage,omitempty"`
	Stages           []descriptorFile `yaml:"stages"`
}

type descriptorFile struct {
	Stage      string `yaml:"stage"`
	Duration   string `yaml:"duration"`
	Message    string `yaml:"message"`
	Percentage int    `yaml:"percentage"`
}

// ParseScript decodes and validates a YAML script. Missing messages fall back to
// the built-in message for the stage in the given locale.
func ParseScript(data []byte, loc Locale) (Script, error) {
	var f scriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Script{}, fmt.Errorf("parsing script: %w", err)
	}

	defaults := DefaultScript(loc)
	script := Script{
		Name:             f.Name,
		CompletedMessage: f.CompletedMessage,
	}
	if script.CompletedMessage == "" {
		script.CompletedMessage = defaults.CompletedMessage
	}

	for i, d := range f.Stages {
		dur, err := time.ParseDuration(strings.TrimSpace(d.Duration))
		if err != nil {
			return Script{}, fmt.Errorf("%w: stage %d: invalid duration %q", ErrInvalidScript, i, d.Duration)
		}
		msg := d.Message
		if msg == "" {
			msg = defaultMessages[loc][Stage(d.Stage)]
		}
		script.Stages = append(script.Stages, Descriptor{
			Stage:      Stage(d.Stage),
			Duration:   dur,
			Message:    msg,
			Percentage: d.Percentage,
		})
	}

	if err := script.Validate(); err != nil {
		return Script{}, err
	}
	return script, nil
}

// LoadScript reads a YAML script from path. The file name is used as the script
// name when the file does not set one.
func LoadScript(path string, loc Locale) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("reading script: %w", err)
	}
	script, err := ParseScript(data, loc)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	if script.Name == "" {
		script.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return script, nil
}

// MarshalScript encodes a script in the YAML layout accepted by ParseScript.
func MarshalScript(s Script) ([]byte, error) {
	f := scriptFile{
		Name:             s.Name,
		CompletedMessage: s.CompletedMessage,
	}
	for _, d := range s.Stages {
		f.Stages = append(f.Stages, descriptorFile{
			Stage:      string(d.Stage),
			Duration:   d.Duration.String(),
			Message:    d.Message,
			Percentage: d.Percentage,
		})
	}
	return yaml.Marshal(f)
}
