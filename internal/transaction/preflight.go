package transaction

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"duopane/internal/errors"
)

// Access checks use access(2) so they answer for the real user, matching what
// the following syscalls will be allowed to do.

func canRead(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}

func canTraverse(dir string) bool {
	return unix.Access(dir, unix.R_OK|unix.X_OK) == nil
}

func canWriteDir(dir string) bool {
	return unix.Access(dir, unix.W_OK|unix.X_OK) == nil
}

// statSource reports NotFound for a missing source and a read error for any
// other stat failure.
func statSource(path string) (fs.FileInfo, error) {
	info, err := os.Lstat(path)
	if err == nil {
		return info, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.NewNotFound(path, nil)
	}
	return nil, errors.NewPermissionError(errors.AccessRead, path, err)
}

// checkSourceReadable skips symlinks: reading a link needs no permission on
// the link itself.
func checkSourceReadable(path string, info fs.FileInfo) error {
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil
	}
	if info.IsDir() {
		if !canTraverse(path) {
			return errors.NewPermissionError(errors.AccessRead, path, nil)
		}
		return nil
	}
	if !canRead(path) {
		return errors.NewPermissionError(errors.AccessRead, path, nil)
	}
	return nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

type pairCheck struct {
	// sourceParentWritable also requires the source's directory to be
	// writable, which Move needs to unlink the source.
	sourceParentWritable bool
	// walkSources requires every entry below a directory source to be
	// readable.
	walkSources bool
}

// validatePairs runs the all-or-nothing preflight shared by Move and Copy. It
// returns the first failure in instruction order.
func validatePairs(instructions []Instruction, check pairCheck) error {
	if len(instructions) == 0 {
		return errors.ErrEmptySelection
	}

	seen := make(map[string]struct{}, len(instructions))
	for _, in := range instructions {
		if _, err := os.Lstat(in.Destination); err == nil {
			return errors.NewAlreadyExists(in.Destination)
		} else if !os.IsNotExist(err) {
			return errors.NewPermissionError(errors.AccessWrite, in.Destination, err)
		}
		if _, dup := seen[in.Destination]; dup {
			return errors.NewAlreadyExists(in.Destination)
		}
		seen[in.Destination] = struct{}{}

		if isWithin(in.Destination, in.Source) {
			return errors.NewInvalidOperation("cannot place a directory inside itself", in.Source)
		}

		info, err := statSource(in.Source)
		if err != nil {
			return err
		}
		if !canWriteDir(filepath.Dir(in.Destination)) {
			return errors.NewPermissionError(errors.AccessWrite, in.Destination, nil)
		}
		if check.sourceParentWritable && !canWriteDir(filepath.Dir(in.Source)) {
			return errors.NewPermissionError(errors.AccessWrite, in.Source, nil)
		}
		if err := checkSourceReadable(in.Source, info); err != nil {
			return err
		}
		if check.walkSources && info.IsDir() {
			if err := walkReadable(in.Source); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkReadable verifies that every file below root can be read and every
// directory can be listed.
func walkReadable(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.NewTraversalError(path, err)
		}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			return nil
		case d.IsDir():
			if !canTraverse(path) {
				return errors.NewTraversalError(path, nil)
			}
		default:
			if !canRead(path) {
				return errors.NewTraversalError(path, nil)
			}
		}
		return nil
	})
}

// walkRemovable verifies that every directory below root allows its entries
// to be unlinked.
func walkRemovable(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.NewTraversalError(path, err)
		}
		if d.IsDir() && !canWriteDir(path) {
			return errors.NewPermissionError(errors.AccessWrite, path, nil)
		}
		return nil
	})
}
