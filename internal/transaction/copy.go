package transaction

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"duopane/internal/errors"
	"duopane/internal/log"
	"duopane/internal/selection"
)

// Copy duplicates every selected path into a destination directory. It runs
// the bulk copy on a worker goroutine while the calling goroutine samples
// progress.
//
// Copy is not atomic: when a copy fails after preflight (disk full, a source
// vanishing) it stops in place and the files already copied stay on disk.
type Copy struct {
	instructions []Instruction
	env          env
}

// NewCopy builds a Copy of sel into dir.
func NewCopy(sel selection.Selection, dir string, opts ...Option) *Copy {
	return &Copy{instructions: instructionsFor(sel, dir), env: newEnv(opts)}
}

func (t *Copy) Kind() Kind { return KindCopy }

func (t *Copy) ReportsProgress() bool { return true }

func (t *Copy) IsAtomic() bool { return false }

// Instructions returns the source/destination pairs in execution order.
func (t *Copy) Instructions() []Instruction { return cloneInstructions(t.instructions) }

func (t *Copy) Describe() string {
	dir := ""
	if len(t.instructions) > 0 {
		dir = filepath.Dir(t.instructions[0].Destination)
	}
	return fmt.Sprintf("copy %s to %s", countLabel(len(t.instructions)), dir)
}

// Revert removes the copies. Nothing is ever moved back to the sources.
func (t *Copy) Revert() Transaction {
	dests := make([]string, len(t.instructions))
	for i, in := range t.instructions {
		dests[i] = in.Destination
	}
	return &Remove{paths: selection.New(dests).List(), env: t.env}
}

// Validate runs the preflight, including a walk of directory sources.
func (t *Copy) Validate() error {
	return validatePairs(t.instructions, pairCheck{walkSources: true})
}

func (t *Copy) sources() []string {
	out := make([]string, len(t.instructions))
	for i, in := range t.instructions {
		out[i] = in.Source
	}
	return out
}

func (t *Copy) destinations() []string {
	out := make([]string, len(t.instructions))
	for i, in := range t.instructions {
		out[i] = in.Destination
	}
	return out
}

// Execute validates, then copies. Progress samples arrive on the calling
// goroutine every poll interval; the last sample is delivered before Execute
// returns and reads 1.0 when the copy succeeded.
func (t *Copy) Execute(ctx context.Context, progress ProgressFunc) (err error) {
	start := time.Now()
	defer func() { t.env.finish(KindCopy, start, err) }()

	if err := t.Validate(); err != nil {
		return err
	}

	total := TotalSize(t.sources())
	rep := &reporter{fn: progress}
	if total == 0 {
		rep.report(Progress{Done: 0, Total: 0})
	}

	var written atomic.Int64
	c := &copier{written: &written, chunkDelay: t.env.chunkDelay}
	stop := newCancelToken()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop.Cancel()
		return t.copyAll(gctx, c)
	})

	if total > 0 {
		s := &sampler{
			interval: t.env.pollInterval,
			total:    total,
			measure:  func() int64 { return TotalSize(t.destinations()) },
		}
		s.run(stop, rep.report)
	}
	<-stop.Done()
	copyErr := g.Wait()

	if t.env.observer != nil {
		t.env.observer.BytesCopied(written.Load())
	}

	if copyErr != nil {
		if total > 0 {
			rep.report(Progress{Done: TotalSize(t.destinations()), Total: total})
		}
		var failed *errors.FileError
		if errors.As(copyErr, &failed) {
			return copyErr
		}
		return errors.NewOperationFailed("copy failed", "", copyErr)
	}

	if total > 0 {
		rep.report(Progress{Done: total, Total: total})
	}
	log.Info("copied %s (%d bytes)", countLabel(len(t.instructions)), written.Load())
	t.env.notify()
	return nil
}

func (t *Copy) copyAll(ctx context.Context, c *copier) error {
	for _, in := range t.instructions {
		log.Debug("copying %s -> %s", in.Source, in.Destination)
		if err := c.copyPath(ctx, in.Source, in.Destination); err != nil {
			return errors.NewOperationFailed("copy failed", in.Source, err)
		}
	}
	return nil
}
