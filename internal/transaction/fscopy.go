package transaction

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"duopane/internal/log"

	"github.com/otiai10/copy"
)

// chunkSize is the amount of data between two chunkDelay pauses.
const chunkSize = 256 * 1024

// copier copies files and directory trees, counting the bytes it writes.
type copier struct {
	written    *atomic.Int64
	chunkDelay time.Duration
}

// copyPath copies src to dst, recursing into directories. Symlinks are
// recreated, not followed, and permission bits are kept.
func (c *copier) copyPath(ctx context.Context, src, dst string) error {
	return copy.Copy(src, dst, copy.Options{
		OnSymlink:         func(string) copy.SymlinkAction { return copy.Shallow },
		PermissionControl: copy.PerservePermission,
		WrapReader: func(r io.Reader) io.Reader {
			return &meteredReader{ctx: ctx, r: r, c: c}
		},
	})
}

// meteredReader stops reading once ctx is done and records every byte read.
type meteredReader struct {
	ctx     context.Context
	r       io.Reader
	c       *copier
	pending int
}

func (m *meteredReader) Read(p []byte) (int, error) {
	if err := m.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := m.r.Read(p)
	if n > 0 {
		if m.c.written != nil {
			m.c.written.Add(int64(n))
		}
		if m.c.chunkDelay > 0 {
			m.pending += n
			for m.pending >= chunkSize {
				m.pending -= chunkSize
				time.Sleep(m.c.chunkDelay)
			}
		}
	}
	return n, err
}

// removePartial deletes whatever copyPath managed to create at dst.
func removePartial(dst string) {
	if err := os.RemoveAll(dst); err != nil {
		log.LogWithFields(log.F("path", dst)).WithError(err).Warn("could not clean up partial copy")
	}
}
