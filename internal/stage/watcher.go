package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ScriptEvent is emitted each time the watched script is reloaded.
type ScriptEvent struct {
	Path   string
	Script Script
	Error  error
}

// Watcher reloads a script file when it changes on disk.
type Watcher struct {
	path     string
	locale   Locale
	watcher  *fsnotify.Watcher
	events   chan ScriptEvent
	debounce time.Duration
}

// NewWatcher creates a watcher for the script at path.
func NewWatcher(path string, loc Locale) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving script path: %w", err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     abs,
		locale:   loc,
		watcher:  fsWatcher,
		events:   make(chan ScriptEvent, 10),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Events returns the channel that receives reload events. It is closed when Run returns.
func (w *Watcher) Events() <-chan ScriptEvent {
	return w.events
}

// Run watches the script's directory until ctx is done. Editors often replace
// files instead of writing them in place, so the directory is watched and
// events are filtered by name.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.watcher.Close()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.Now()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.send(ctx, ScriptEvent{Path: w.path, Error: err})

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			script, err := LoadScript(w.path, w.locale)
			w.send(ctx, ScriptEvent{Path: w.path, Script: script, Error: err})
		}
	}
}

func (w *Watcher) send(ctx context.Context, ev ScriptEvent) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
