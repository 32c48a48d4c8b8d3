// Package workspace holds the state of one pane: its directory, its listing
// and the entries the user has checked.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"duopane/internal/common"
	"duopane/internal/errors"
	"duopane/internal/log"
	"duopane/internal/permissions"
	"duopane/internal/selection"
)

// Workspace is one pane. It is safe for concurrent use; the listing is
// rebuilt from the watcher goroutine while the UI reads it.
type Workspace struct {
	mu          sync.RWMutex
	path        string
	entries     []common.Entry
	checked     map[string]struct{}
	showHidden  bool
	subscribers []func()
}

// New opens a workspace on dir.
func New(dir string, showHidden bool) (*Workspace, error) {
	w := &Workspace{checked: make(map[string]struct{}), showHidden: showHidden}
	if err := w.Chdir(dir); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workspace) Path() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.path
}

// Entries returns a copy of the current listing.
func (w *Workspace) Entries() []common.Entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]common.Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

func (w *Workspace) ShowHidden() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.showHidden
}

// Chdir switches to dir, clearing the checked entries.
func (w *Workspace) Chdir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound(abs, err)
		}
		return errors.NewPermissionError(errors.AccessRead, abs, err)
	}
	if !info.IsDir() {
		return errors.NewInvalidOperation("not a directory", abs)
	}

	w.mu.Lock()
	entries, err := readListing(abs, w.showHidden)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.path = abs
	w.entries = entries
	w.checked = make(map[string]struct{})
	subs := w.subscribersLocked()
	w.mu.Unlock()

	log.LogWithFields(log.F("path", abs), log.F("entries", len(entries))).Debug("changed directory")
	notify(subs)
	return nil
}

// StepUp moves to the parent directory. At the root it does nothing.
func (w *Workspace) StepUp() error {
	cur := w.Path()
	parent := filepath.Dir(cur)
	if parent == cur {
		return nil
	}
	return w.Chdir(parent)
}

// Rebuild re-reads the listing. Checks on entries that disappeared are
// dropped. If the directory itself is gone the workspace climbs to the
// nearest ancestor that still exists.
func (w *Workspace) Rebuild() error {
	w.mu.Lock()
	dir := w.path
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	entries, err := readListing(dir, w.showHidden)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if dir != w.path {
		log.LogWithFields(log.F("from", w.path), log.F("to", dir)).Warn("directory vanished, moved up")
		w.checked = make(map[string]struct{})
	}
	w.path = dir
	w.entries = entries

	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[e.Path] = struct{}{}
	}
	for p := range w.checked {
		if _, ok := present[p]; !ok {
			delete(w.checked, p)
		}
	}
	subs := w.subscribersLocked()
	w.mu.Unlock()

	notify(subs)
	return nil
}

// Toggle flips the check on path and reports whether it is now checked.
// Paths outside the listing are ignored.
func (w *Workspace) Toggle(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.listedLocked(path) {
		return false
	}
	if _, ok := w.checked[path]; ok {
		delete(w.checked, path)
		return false
	}
	w.checked[path] = struct{}{}
	return true
}

func (w *Workspace) IsChecked(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.checked[path]
	return ok
}

// CheckMatching checks every entry whose name matches pattern and returns
// how many matched.
func (w *Workspace) CheckMatching(pattern string) (int, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return 0, errors.NewInvalidOperation(fmt.Sprintf("invalid pattern %q: %v", pattern, err), "")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, e := range w.entries {
		if g.Match(e.Name) {
			w.checked[e.Path] = struct{}{}
			n++
		}
	}
	return n, nil
}

func (w *Workspace) ClearChecks() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.checked = make(map[string]struct{})
}

// Selection returns the checked entries in listing order.
func (w *Workspace) Selection() selection.Selection {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.checked))
	for _, e := range w.entries {
		if _, ok := w.checked[e.Path]; ok {
			paths = append(paths, e.Path)
		}
	}
	return selection.New(paths)
}

// Subscribe registers fn to run after every rebuild or directory change.
func (w *Workspace) Subscribe(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers = append(w.subscribers, fn)
}

// SetShowHidden toggles dot files and rebuilds the listing.
func (w *Workspace) SetShowHidden(show bool) error {
	w.mu.Lock()
	w.showHidden = show
	w.mu.Unlock()
	return w.Rebuild()
}

func (w *Workspace) listedLocked(path string) bool {
	for _, e := range w.entries {
		if e.Path == path {
			return true
		}
	}
	return false
}

func (w *Workspace) subscribersLocked() []func() {
	out := make([]func(), len(w.subscribers))
	copy(out, w.subscribers)
	return out
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

// readListing lists dir with directories first, each group in name order.
func readListing(dir string, showHidden bool) ([]common.Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewTraversalError(dir, err)
	}

	entries := make([]common.Entry, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Lstat(path)
		if err != nil {
			// Removed between ReadDir and Lstat.
			continue
		}
		e := common.Entry{
			Name:      name,
			Path:      path,
			IsDir:     info.IsDir(),
			IsSymlink: info.Mode()&os.ModeSymlink != 0,
			Size:      info.Size(),
			Mode:      permissions.FromMode(info.Mode()).String(),
			ModTime:   info.ModTime(),
		}
		if e.IsSymlink {
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				e.IsDir = true
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
