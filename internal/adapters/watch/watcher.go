// Package watch implements the ports.Watcher interface using
// github.com/fsnotify/fsnotify. It monitors a history CSV (or a
// directory of them) and debounces rapid events, since downloads and
// editors often trigger several writes per save.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 500 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring path. When path is a file, its parent
// directory is watched and events are filtered to that file; when it
// is a directory, every CSV inside it is observed. onChange receives
// the absolute path of each changed history file.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	target := ""
	watchDir := absPath
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		target = absPath
		watchDir = filepath.Dir(absPath)
	}
	if err := w.fw.Add(watchDir); err != nil {
		return err
	}

	// Debounce state: last event time per file.
	debounce := make(map[string]time.Time)
	var dmu sync.Mutex

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				name := event.Name
				if !relevant(name, target) {
					continue
				}

				dmu.Lock()
				last, seen := debounce[name]
				now := time.Now()
				if seen && now.Sub(last) < debounceInterval {
					dmu.Unlock()
					continue
				}
				pruneDebounce(debounce, now)
				debounce[name] = now
				dmu.Unlock()

				// Rename covers the atomic download-then-move pattern.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					onChange(name)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own; nothing useful to do here

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// pruneDebounce drops entries old enough that they no longer suppress
// anything, so a long-running directory watch stays bounded.
func pruneDebounce(debounce map[string]time.Time, now time.Time) {
	for file, at := range debounce {
		if now.Sub(at) >= debounceInterval {
			delete(debounce, file)
		}
	}
}

// relevant reports whether an event path is a history file we care about.
func relevant(name, target string) bool {
	if target != "" {
		return name == target
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".csv")
}
