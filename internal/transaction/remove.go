package transaction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"duopane/internal/errors"
	"duopane/internal/log"
	"duopane/internal/selection"
)

// Remove deletes every selected path, recursing into directories. Removal
// cannot be undone: there is no trash, so Revert returns DoNothing.
type Remove struct {
	paths []string
	env   env
}

// NewRemove builds a Remove of sel. Paths lying under another selected path
// are dropped, since removing the outer one deletes them.
func NewRemove(sel selection.Selection, opts ...Option) *Remove {
	return &Remove{paths: outermost(sel.List()), env: newEnv(opts)}
}

func outermost(paths []string) []string {
	out := make([]string, 0, len(paths))
	for i, p := range paths {
		nested := false
		for j, other := range paths {
			if i != j && isWithin(p, other) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, p)
		}
	}
	return out
}

func (t *Remove) Kind() Kind { return KindRemove }

func (t *Remove) ReportsProgress() bool { return false }

func (t *Remove) IsAtomic() bool { return true }

// Paths returns the paths to delete in order.
func (t *Remove) Paths() []string {
	out := make([]string, len(t.paths))
	copy(out, t.paths)
	return out
}

func (t *Remove) Describe() string {
	if len(t.paths) == 1 {
		return fmt.Sprintf("remove %s", t.paths[0])
	}
	return fmt.Sprintf("remove %s", countLabel(len(t.paths)))
}

func (t *Remove) Revert() Transaction { return &DoNothing{env: t.env} }

// Validate fails on an empty selection before touching the filesystem, then
// checks that every path exists and can be unlinked.
func (t *Remove) Validate() error {
	if len(t.paths) == 0 {
		return errors.ErrEmptySelection
	}
	for _, p := range t.paths {
		info, err := os.Lstat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.NewNotFound(p, nil)
			}
			return errors.NewPermissionError(errors.AccessWrite, p, err)
		}
		if !canWriteDir(filepath.Dir(p)) {
			return errors.NewPermissionError(errors.AccessWrite, p, nil)
		}
		if info.IsDir() {
			if err := walkRemovable(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Remove) Execute(ctx context.Context, _ ProgressFunc) (err error) {
	start := time.Now()
	defer func() { t.env.finish(KindRemove, start, err) }()

	if err := t.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, p := range t.paths {
		info, err := os.Lstat(p)
		if err != nil {
			return errors.NewOperationFailed("remove failed", p, err)
		}
		log.Debug("removing %s", p)
		if info.IsDir() {
			err = os.RemoveAll(p)
		} else {
			err = os.Remove(p)
		}
		if err != nil {
			return errors.NewOperationFailed("remove failed", p, err)
		}
	}

	log.Info("removed %s", countLabel(len(t.paths)))
	t.env.notify()
	return nil
}
