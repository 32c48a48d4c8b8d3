package transaction

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Size returns the number of bytes stored in regular files at or below path.
// Missing paths count as zero, as do directories and symlinks themselves, so
// a complete copy measures exactly the same as its source.
func Size(path string) int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return 0
	}
	if info.Mode().IsRegular() {
		return info.Size()
	}
	if !info.IsDir() {
		return 0
	}

	var total int64
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Entries vanishing mid-walk are expected while a copy is running.
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// TotalSize sums Size over paths.
func TotalSize(paths []string) int64 {
	var total int64
	for _, p := range paths {
		total += Size(p)
	}
	return total
}
