package transaction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"duopane/internal/errors"
	"duopane/internal/log"
)

// MakeDir creates one directory. Its inverse removes it again.
type MakeDir struct {
	path string
	env  env
}

// NewMakeDir builds a transaction creating path.
func NewMakeDir(path string, opts ...Option) *MakeDir {
	return &MakeDir{path: filepath.Clean(path), env: newEnv(opts)}
}

func (t *MakeDir) Kind() Kind { return KindMakeDir }

func (t *MakeDir) ReportsProgress() bool { return false }

func (t *MakeDir) IsAtomic() bool { return true }

func (t *MakeDir) Path() string { return t.path }

func (t *MakeDir) Describe() string { return fmt.Sprintf("mkdir %s", t.path) }

func (t *MakeDir) Revert() Transaction {
	return &Remove{paths: []string{t.path}, env: t.env}
}

func (t *MakeDir) Validate() error {
	if _, err := os.Lstat(t.path); err == nil {
		return errors.NewAlreadyExists(t.path)
	} else if !os.IsNotExist(err) {
		return errors.NewPermissionError(errors.AccessWrite, t.path, err)
	}
	if !canWriteDir(filepath.Dir(t.path)) {
		return errors.NewPermissionError(errors.AccessWrite, t.path, nil)
	}
	return nil
}

func (t *MakeDir) Execute(ctx context.Context, _ ProgressFunc) (err error) {
	start := time.Now()
	defer func() { t.env.finish(KindMakeDir, start, err) }()

	if err := t.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Mkdir(t.path, 0o755); err != nil {
		return errors.NewOperationFailed("mkdir failed", t.path, err)
	}

	log.Info("created directory %s", t.path)
	t.env.notify()
	return nil
}
