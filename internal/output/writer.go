package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)
var multiDash = regexp.MustCompile(`-{2,}`)

// Slug turns a script name into a directory-safe prefix.
func Slug(name string) string {
	if name == "" {
		return "run"
	}
	s := strings.ToLower(name)
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 60 {
		s = s[:60]
		s = strings.TrimRight(s, "-")
	}
	if s == "" {
		return "run"
	}
	return s
}

// RunDir creates <baseDir>/<slug>-<unix> for a recording started at.
func RunDir(baseDir, name string, at time.Time) (string, error) {
	dirName := fmt.Sprintf("%s-%d", Slug(name), at.Unix())
	path := filepath.Join(baseDir, dirName)
	if err := os.MkdirAll(path, 0o700); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	return path, nil
}

func AtomicWrite(path string, data []byte, perm os.FileMode) error {
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
