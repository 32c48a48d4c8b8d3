package transaction_test

import (
	"os"
	"path/filepath"
	"testing"

	"duopane/internal/transaction"
	"duopane/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateSizedFile(t, filepath.Join(dir, "tree", "a.bin"), 1000)
	testutils.CreateSizedFile(t, filepath.Join(dir, "tree", "sub", "b.bin"), 2500)
	require.NoError(t, os.Symlink(filepath.Join(dir, "tree", "a.bin"), filepath.Join(dir, "tree", "link")))

	assert.Equal(t, int64(3500), transaction.Size(filepath.Join(dir, "tree")))
	assert.Equal(t, int64(1000), transaction.Size(filepath.Join(dir, "tree", "a.bin")))
	assert.Zero(t, transaction.Size(filepath.Join(dir, "tree", "link")))
	assert.Zero(t, transaction.Size(filepath.Join(dir, "missing")))
	assert.Equal(t, int64(4500), transaction.TotalSize([]string{
		filepath.Join(dir, "tree"),
		filepath.Join(dir, "tree", "a.bin"),
		filepath.Join(dir, "missing"),
	}))
}
