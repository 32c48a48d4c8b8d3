package transaction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"duopane/internal/errors"
	"duopane/internal/log"
	"duopane/internal/selection"
)

// Move renames every selected path into a destination directory.
type Move struct {
	instructions []Instruction
	env          env
}

// NewMove builds a Move of sel into dir.
func NewMove(sel selection.Selection, dir string, opts ...Option) *Move {
	return &Move{instructions: instructionsFor(sel, dir), env: newEnv(opts)}
}

// NewRename builds a single-path Move from src to dst.
func NewRename(src, dst string, opts ...Option) *Move {
	return &Move{
		instructions: []Instruction{{Source: filepath.Clean(src), Destination: filepath.Clean(dst)}},
		env:          newEnv(opts),
	}
}

func (t *Move) Kind() Kind { return KindMove }

func (t *Move) ReportsProgress() bool { return false }

func (t *Move) IsAtomic() bool { return true }

// Instructions returns the source/destination pairs in execution order.
func (t *Move) Instructions() []Instruction { return cloneInstructions(t.instructions) }

func (t *Move) Describe() string {
	if len(t.instructions) == 1 {
		in := t.instructions[0]
		return fmt.Sprintf("move %s to %s", in.Source, in.Destination)
	}
	dir := ""
	if len(t.instructions) > 0 {
		dir = filepath.Dir(t.instructions[0].Destination)
	}
	return fmt.Sprintf("move %s to %s", countLabel(len(t.instructions)), dir)
}

// Revert swaps every source and destination.
func (t *Move) Revert() Transaction {
	swapped := make([]Instruction, len(t.instructions))
	for i, in := range t.instructions {
		swapped[i] = Instruction{Source: in.Destination, Destination: in.Source}
	}
	return &Move{instructions: swapped, env: t.env}
}

// Validate runs the preflight without mutating anything.
func (t *Move) Validate() error {
	return validatePairs(t.instructions, pairCheck{sourceParentWritable: true})
}

// Execute moves every instruction in order once all of them pass preflight.
// If a move fails after validation, the ones already applied are moved back.
func (t *Move) Execute(ctx context.Context, _ ProgressFunc) (err error) {
	start := time.Now()
	defer func() { t.env.finish(KindMove, start, err) }()

	if err := t.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c := &copier{chunkDelay: t.env.chunkDelay}
	for i, in := range t.instructions {
		log.Debug("moving %s -> %s", in.Source, in.Destination)
		if err := movePath(ctx, c, in.Source, in.Destination); err != nil {
			t.rollback(ctx, c, t.instructions[:i])
			return errors.NewOperationFailed("move failed", in.Source, err)
		}
	}

	log.Info("moved %s", countLabel(len(t.instructions)))
	t.env.notify()
	return nil
}

func (t *Move) rollback(ctx context.Context, c *copier, applied []Instruction) {
	for i := len(applied) - 1; i >= 0; i-- {
		in := applied[i]
		if err := movePath(context.WithoutCancel(ctx), c, in.Destination, in.Source); err != nil {
			log.LogWithFields(log.F("source", in.Source), log.F("destination", in.Destination)).
				WithError(err).Error("rollback of move failed")
		}
	}
}

// movePath renames src to dst, copying and deleting when they are on
// different filesystems.
func movePath(ctx context.Context, c *copier, src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return err
	}

	log.Debug("cross-device move, copying %s", src)
	if err := c.copyPath(ctx, src, dst); err != nil {
		removePartial(dst)
		return err
	}
	return os.RemoveAll(src)
}
