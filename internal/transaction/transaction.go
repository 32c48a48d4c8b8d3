// Package transaction implements duopane's file operations as transactions.
//
// Every transaction validates all of its instructions before touching the
// filesystem, executes them in order, and can build its own inverse with
// Revert. Copy is the only transaction that reports progress and the only one
// that is not atomic: once its preflight passes, a late failure leaves the
// already copied files in place.
package transaction

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"duopane/internal/log"
	"duopane/internal/selection"
)

// DefaultPollInterval is how often Copy samples destination sizes.
const DefaultPollInterval = 200 * time.Millisecond

// Kind identifies a transaction variant.
type Kind int

const (
	KindNothing Kind = iota
	KindMove
	KindCopy
	KindRemove
	KindChangePermission
	KindMakeDir
)

func (k Kind) String() string {
	switch k {
	case KindNothing:
		return "nothing"
	case KindMove:
		return "move"
	case KindCopy:
		return "copy"
	case KindRemove:
		return "remove"
	case KindChangePermission:
		return "chmod"
	case KindMakeDir:
		return "mkdir"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Transaction is a validated, executable and revertible file operation.
type Transaction interface {
	Kind() Kind
	// Describe returns a one-line, human readable summary.
	Describe() string
	// Execute validates every instruction and then applies them. The progress
	// callback is only used by transactions that report progress and may be nil.
	Execute(ctx context.Context, progress ProgressFunc) error
	// Revert builds the inverse transaction without executing it.
	Revert() Transaction
	ReportsProgress() bool
	IsAtomic() bool
}

// Instruction is one source/destination pair.
type Instruction struct {
	Source      string
	Destination string
}

// Notifier is told to refresh every pane after a successful mutation.
type Notifier interface {
	RebuildAll()
}

// Observer receives the outcome of every executed transaction.
type Observer interface {
	TransactionFinished(kind Kind, err error, elapsed time.Duration)
	BytesCopied(n int64)
}

// Option configures the collaborators of a transaction.
type Option func(*env)

// WithNotifier sets the pane notifier invoked after successful mutations.
func WithNotifier(n Notifier) Option {
	return func(e *env) { e.notifier = n }
}

// WithObserver sets the observer that records transaction outcomes.
func WithObserver(o Observer) Option {
	return func(e *env) { e.observer = o }
}

// WithPollInterval overrides how often Copy samples progress.
func WithPollInterval(d time.Duration) Option {
	return func(e *env) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// env is shared by a transaction and the inverse it builds.
type env struct {
	notifier     Notifier
	observer     Observer
	pollInterval time.Duration
	chunkDelay   time.Duration
}

func newEnv(opts []Option) env {
	e := env{pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e env) notify() {
	if e.notifier != nil {
		e.notifier.RebuildAll()
	}
}

func (e env) finish(kind Kind, start time.Time, err error) {
	elapsed := time.Since(start)
	if e.observer != nil {
		e.observer.TransactionFinished(kind, err, elapsed)
	}
	fields := []log.Field{log.F("kind", kind.String()), log.F("elapsed", elapsed.Round(time.Millisecond))}
	if err != nil {
		log.LogWithFields(fields...).WithError(err).Warn("transaction failed")
		return
	}
	log.LogWithFields(fields...).Debug("transaction finished")
}

// instructionsFor pairs each selected path with the same base name inside dir.
func instructionsFor(sel selection.Selection, dir string) []Instruction {
	paths := sel.List()
	out := make([]Instruction, 0, len(paths))
	for _, p := range paths {
		out = append(out, Instruction{
			Source:      p,
			Destination: filepath.Join(dir, filepath.Base(p)),
		})
	}
	return out
}

func cloneInstructions(in []Instruction) []Instruction {
	out := make([]Instruction, len(in))
	copy(out, in)
	return out
}

func countLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// DoNothing is the identity transaction. It is the inverse of operations that
// cannot be undone.
type DoNothing struct {
	env env
}

// NewDoNothing returns the identity transaction.
func NewDoNothing(opts ...Option) *DoNothing {
	return &DoNothing{env: newEnv(opts)}
}

func (t *DoNothing) Kind() Kind { return KindNothing }

func (t *DoNothing) Describe() string { return "nothing" }

func (t *DoNothing) Execute(ctx context.Context, _ ProgressFunc) error { return nil }

func (t *DoNothing) Revert() Transaction { return &DoNothing{env: t.env} }

func (t *DoNothing) ReportsProgress() bool { return false }

func (t *DoNothing) IsAtomic() bool { return true }

var (
	_ Transaction = (*DoNothing)(nil)
	_ Transaction = (*Move)(nil)
	_ Transaction = (*Copy)(nil)
	_ Transaction = (*Remove)(nil)
	_ Transaction = (*ChangePermission)(nil)
	_ Transaction = (*MakeDir)(nil)
)
