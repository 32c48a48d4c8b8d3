package common

import (
	"fmt"
	"sync"
	"time"

	"duopane/internal/errors"
	"duopane/internal/selection"
)

// Mode is the paste mode of the application.
type Mode int

const (
	// Normal is the default mode for navigation and single-step operations
	Normal Mode = iota
	// SelectForMove is entered by cut and ends with paste or cancel
	SelectForMove
	// SelectForCopy is entered by copy and ends with paste or cancel
	SelectForCopy
)

func (m Mode) String() string {
	switch m {
	case SelectForMove:
		return "select_for_move"
	case SelectForCopy:
		return "select_for_copy"
	default:
		return "normal"
	}
}

// PanelCount is the number of panes.
const PanelCount = 2

// Pending is a cut or copy waiting for its paste.
type Pending struct {
	Mode Mode
	// SourcePanel is the pane the selection was taken from.
	SourcePanel int
	// TargetPanel is the locked pane the selection will be pasted into.
	TargetPanel int
	Selection   selection.Selection
}

// OperationState is the single source of truth for the paste mode and the
// panel lock. The lock is held exactly when the mode is not Normal.
type OperationState struct {
	mu      sync.Mutex
	pending *Pending
	claimed bool
}

// Begin enters mode with sel as the pending selection and locks the panel
// opposite sourcePanel as the paste target.
func (s *OperationState) Begin(mode Mode, sourcePanel int, sel selection.Selection) error {
	if mode == Normal {
		return errors.NewInvalidOperation("cannot begin a paste in normal mode", "")
	}
	if sourcePanel < 0 || sourcePanel >= PanelCount {
		return errors.NewInvalidOperation(fmt.Sprintf("no panel %d", sourcePanel), "")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return errors.NewInvalidOperation("a "+s.pending.Mode.String()+" is already pending", "")
	}
	if sel.Empty() {
		return errors.ErrEmptySelection
	}
	s.pending = &Pending{
		Mode:        mode,
		SourcePanel: sourcePanel,
		TargetPanel: sourcePanel ^ 1,
		Selection:   sel,
	}
	return nil
}

// Mode returns the current mode.
func (s *OperationState) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Normal
	}
	return s.pending.Mode
}

// Lock returns the locked panel, if any.
func (s *OperationState) Lock() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return 0, false
	}
	return s.pending.TargetPanel, true
}

// Pending returns a copy of the pending operation.
func (s *OperationState) Pending() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Pending{}, false
	}
	return *s.pending, true
}

// Claim hands the pending operation to exactly one caller. The lock stays
// held until Finish; a second Claim fails while the first is in flight.
func (s *OperationState) Claim() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.claimed {
		return Pending{}, false
	}
	s.claimed = true
	return *s.pending, true
}

// Cancel drops the pending operation unless a paste of it is in flight.
func (s *OperationState) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed {
		return
	}
	s.pending = nil
}

// Finish clears the pending operation and returns it.
func (s *OperationState) Finish() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Pending{}, false
	}
	p := *s.pending
	s.pending = nil
	s.claimed = false
	return p, true
}

// PaneReader is what views use to read a pane.
type PaneReader interface {
	Path() string
	Entries() []Entry
	IsChecked(path string) bool
}

// Entry is one row of a pane listing.
type Entry struct {
	Name      string
	Path      string
	IsDir     bool
	IsSymlink bool
	Size      int64
	Mode      string
	ModTime   time.Time
}
