// Package watch refreshes the panes when their directories change on disk.
package watch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"duopane/internal/log"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to end.
const DefaultDebounce = 150 * time.Millisecond

// Notifier is refreshed once per burst of filesystem events.
type Notifier interface {
	RebuildAll()
}

// Watcher monitors the pane directories using fsnotify
type Watcher struct {
	notifier Notifier
	debounce time.Duration

	// Directories being watched
	directories []string

	// Channel to signal stop
	stopChan chan struct{}
	// Closed when the event loop has returned
	doneChan chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state and the directories list
	mutex sync.RWMutex

	// Whether the watcher is running
	running bool
}

// New creates a watcher that calls notifier.RebuildAll after changes settle
// for debounce. A non-positive debounce uses DefaultDebounce.
func New(notifier Notifier, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		notifier:  notifier,
		debounce:  debounce,
		fsWatcher: fsWatcher,
	}, nil
}

// SetDirectories replaces the watched set with dirs. Duplicates are watched
// once; directories that cannot be watched are logged and skipped.
func (w *Watcher) SetDirectories(dirs ...string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	want := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		want[d] = struct{}{}
	}

	kept := w.directories[:0]
	for _, d := range w.directories {
		if _, ok := want[d]; ok {
			kept = append(kept, d)
			delete(want, d)
			continue
		}
		if err := w.fsWatcher.Remove(d); err != nil {
			log.LogWithFields(log.F("directory", d)).WithError(err).Debug("Failed to remove watch")
		}
	}
	w.directories = kept

	var firstErr error
	for _, d := range dirs {
		if _, ok := want[d]; !ok {
			continue
		}
		delete(want, d)
		if err := w.addLocked(d); err != nil {
			log.LogWithFields(log.F("directory", d)).WithError(err).Warn("Cannot watch directory")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		w.directories = append(w.directories, d)
	}
	return firstErr
}

func (w *Watcher) addLocked(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// Start begins the event loop.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})

	go w.loop(w.stopChan, w.doneChan)
	log.Debug("Watcher started.")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				// Access-time updates would otherwise refresh on every read.
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if w.notifier != nil {
				w.notifier.RebuildAll()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-stop:
			timer.Stop()
			return
		}
	}
}

// Stop halts the watcher and releases the fsnotify handle. A stopped watcher
// cannot be restarted.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		w.mutex.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	done := w.doneChan
	w.mutex.Unlock()

	<-done
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	log.Debug("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Directories returns the list of directories being watched
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}
