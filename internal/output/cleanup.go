package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Candidate is one recording directory found under the output dir.
type Candidate struct {
	Name     string
	Path     string
	Mtime    time.Time
	Manifest *Manifest // nil when run.json is unreadable
}

// ParseDuration parses a human-friendly age (ms, s, m, h, d, w).
// A bare number is treated as days.
func ParseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("empty duration")
	}

	suffixes := []struct {
		suffix string
		mult   time.Duration
	}{
		{"ms", time.Millisecond},
		{"s", time.Second},
		{"m", time.Minute},
		{"h", time.Hour},
		{"d", 24 * time.Hour},
		{"w", 7 * 24 * time.Hour},
	}

	for _, s := range suffixes {
		if strings.HasSuffix(input, s.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(input, s.suffix), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", input, err)
			}
			if n < 0 {
				return 0, fmt.Errorf("invalid duration %q: must not be negative", input)
			}
			return time.Duration(n * float64(s.mult)), nil
		}
	}

	n, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", input, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", input)
	}
	return time.Duration(n * float64(24*time.Hour)), nil
}

// scanRecordings lists directories under baseDir that hold a run.json.
// Symlinks and unrelated directories are skipped so cleanup never touches them.
func scanRecordings(baseDir string) ([]Candidate, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output dir: %w", err)
	}

	var dirs []Candidate
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink != 0 || !entry.IsDir() {
			continue
		}
		path := filepath.Join(baseDir, entry.Name())
		if _, err := os.Stat(filepath.Join(path, "run.json")); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		c := Candidate{
			Name:  entry.Name(),
			Path:  path,
			Mtime: info.ModTime(),
		}
		if m, err := ReadManifest(path); err == nil {
			c.Manifest = m
		}
		dirs = append(dirs, c)
	}
	return dirs, nil
}

// ScanCandidates returns recordings last modified before cutoff.
func ScanCandidates(baseDir string, cutoff time.Time) ([]Candidate, error) {
	dirs, err := scanRecordings(baseDir)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, d := range dirs {
		if d.Mtime.Before(cutoff) {
			candidates = append(candidates, d)
		}
	}
	return candidates, nil
}

// ScanRuns returns every recording, newest first.
func ScanRuns(baseDir string) ([]Candidate, error) {
	runs, err := scanRecordings(baseDir)
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Mtime.After(runs[j].Mtime)
	})
	return runs, nil
}
