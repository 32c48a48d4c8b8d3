// Package selection holds the ordered set of paths a pane hands to a transaction.
package selection

import (
	"path/filepath"
)

// Selection is an ordered, duplicate-free list of absolute paths. It is not
// checked against the filesystem; transactions recheck existence when they run.
type Selection struct {
	paths []string
}

// New builds a Selection from paths. Relative paths are resolved against the
// working directory and every path is cleaned; later duplicates are dropped.
func New(paths []string) Selection {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if !filepath.IsAbs(clean) {
			if abs, err := filepath.Abs(clean); err == nil {
				clean = abs
			}
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return Selection{paths: out}
}

// Of is shorthand for New with variadic paths.
func Of(paths ...string) Selection {
	return New(paths)
}

// List returns a copy of the selected paths in order.
func (s Selection) List() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

func (s Selection) Empty() bool {
	return len(s.paths) == 0
}

func (s Selection) Len() int {
	return len(s.paths)
}

// Contains reports whether path (after cleaning) is part of the selection.
func (s Selection) Contains(path string) bool {
	clean := filepath.Clean(path)
	for _, p := range s.paths {
		if p == clean {
			return true
		}
	}
	return false
}
