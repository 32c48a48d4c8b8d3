package transaction

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"duopane/internal/errors"
	"duopane/internal/log"
	"duopane/internal/permissions"
)

// ChangePermission applies a new permission triad to a single path.
type ChangePermission struct {
	path string
	from permissions.Permissions
	to   permissions.Permissions
	env  env
}

// NewChangePermission builds a transaction that changes path from old to new.
func NewChangePermission(path string, oldPerms, newPerms permissions.Permissions, opts ...Option) *ChangePermission {
	return &ChangePermission{path: filepath.Clean(path), from: oldPerms, to: newPerms, env: newEnv(opts)}
}

func (t *ChangePermission) Kind() Kind { return KindChangePermission }

func (t *ChangePermission) ReportsProgress() bool { return false }

func (t *ChangePermission) IsAtomic() bool { return true }

func (t *ChangePermission) Path() string { return t.path }

// Permissions returns the permissions before and after the change.
func (t *ChangePermission) Permissions() (from, to permissions.Permissions) { return t.from, t.to }

func (t *ChangePermission) Describe() string {
	return fmt.Sprintf("chmod %s %s -> %s", t.path, t.from, t.to)
}

// Revert swaps the old and new permissions.
func (t *ChangePermission) Revert() Transaction {
	return &ChangePermission{path: t.path, from: t.to, to: t.from, env: t.env}
}

// Execute applies the new permissions. setuid, setgid and sticky bits already
// on the file are kept.
func (t *ChangePermission) Execute(ctx context.Context, _ ProgressFunc) (err error) {
	start := time.Now()
	defer func() { t.env.finish(KindChangePermission, start, err) }()

	info, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound(t.path, nil)
		}
		return errors.NewPermissionError(errors.AccessChmod, t.path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	special := info.Mode() & (fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
	if err := os.Chmod(t.path, special|t.to.Mode()); err != nil {
		if os.IsPermission(err) {
			return errors.NewPermissionError(errors.AccessChmod, t.path, err)
		}
		return errors.NewOperationFailed("chmod failed", t.path, err)
	}

	log.Info("changed permissions of %s to %s", t.path, t.to)
	t.env.notify()
	return nil
}
