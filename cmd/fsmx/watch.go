package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 100 * time.Millisecond

// definitionWatcher calls reload whenever the definition file is written or
// replaced. Bursts of events collapse into one reload.
type definitionWatcher struct {
	path    string
	log     zerolog.Logger
	reload  func(path string) error
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	debounce *time.Timer
}

// newDefinitionWatcher watches the directory holding path, so editors that save
// by renaming a temp file are still seen.
func newDefinitionWatcher(path string, log zerolog.Logger, reload func(string) error) (*definitionWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &definitionWatcher{path: abs, log: log, reload: reload, watcher: w}, nil
}

func (w *definitionWatcher) run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("definition watcher error")
		}
	}
}

func (w *definitionWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reloadDebounce, func() {
		if err := w.reload(w.path); err != nil {
			w.log.Error().Err(err).Str("path", w.path).Msg("reload failed, keeping current definition")
		}
	})
}
