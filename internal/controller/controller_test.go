package controller_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"duopane/internal/common"
	"duopane/internal/controller"
	"duopane/internal/errors"
	"duopane/internal/history"
	"duopane/internal/permissions"
	"duopane/internal/transaction"
	"duopane/internal/workspace"
	"duopane/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*controller.Controller, string, string) {
	t.Helper()
	root := t.TempDir()
	left := filepath.Join(root, "a")
	right := filepath.Join(root, "b")
	testutils.CreateTestFilesWithContent(t, left, map[string]string{
		"f1.txt":     "one",
		"f2.txt":     "two",
		"dir/in.txt": "inside",
	})
	require.NoError(t, os.Mkdir(right, 0o755))

	lw, err := workspace.New(left, false)
	require.NoError(t, err)
	rw, err := workspace.New(right, false)
	require.NoError(t, err)
	return controller.New(lw, rw, history.New(10), transaction.WithPollInterval(10*time.Millisecond)), left, right
}

func assertUnlocked(t *testing.T, c *controller.Controller) {
	t.Helper()
	assert.Equal(t, common.Normal, c.Mode())
	_, locked := c.Lock()
	assert.False(t, locked)
	assert.True(t, c.CanSwitchFocus())
}

func TestCutPasteMovesIntoLockedPanel(t *testing.T) {
	c, left, right := setup(t)
	c.Pane(0).Toggle(filepath.Join(left, "f1.txt"))

	require.NoError(t, c.Cut(0))
	assert.Equal(t, common.SelectForMove, c.Mode())
	panel, locked := c.Lock()
	require.True(t, locked)
	assert.Equal(t, 1, panel)
	assert.False(t, c.CanSwitchFocus())

	require.NoError(t, c.Paste(context.Background(), nil))
	assertUnlocked(t, c)
	assert.FileExists(t, filepath.Join(right, "f1.txt"))
	assert.NoFileExists(t, filepath.Join(left, "f1.txt"))
	assert.True(t, c.Pane(0).Selection().Empty(), "source checks are cleared")

	var names []string
	for _, e := range c.Pane(1).Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"f1.txt"}, names, "panes were rebuilt")
	assert.Equal(t, 1, c.History().Len())
}

func TestPasteUsesTargetPathAtPasteTime(t *testing.T) {
	c, left, right := setup(t)
	require.NoError(t, os.Mkdir(filepath.Join(right, "later"), 0o755))
	require.NoError(t, c.Pane(1).Rebuild())
	c.Pane(0).Toggle(filepath.Join(left, "f2.txt"))

	require.NoError(t, c.Copy(0))
	require.NoError(t, c.Pane(1).Chdir(filepath.Join(right, "later")))

	var shares []float64
	require.NoError(t, c.Paste(context.Background(), func(p transaction.Progress) { shares = append(shares, p.Share()) }))
	assert.FileExists(t, filepath.Join(right, "later", "f2.txt"))
	assert.FileExists(t, filepath.Join(left, "f2.txt"))
	require.NotEmpty(t, shares)
	assert.Equal(t, 1.0, shares[len(shares)-1])
}

func TestFailedPasteStillUnlocks(t *testing.T) {
	c, left, right := setup(t)
	testutils.CreateTestFilesWithContent(t, right, map[string]string{"f1.txt": "collision"})
	c.Pane(0).Toggle(filepath.Join(left, "f1.txt"))

	require.NoError(t, c.Cut(0))
	err := c.Paste(context.Background(), nil)
	assert.True(t, errors.IsAlreadyExists(err))
	assertUnlocked(t, c)
	assert.Zero(t, c.History().Len())
	assert.False(t, c.Pane(0).Selection().Empty(), "checks survive a failed paste")
}

func TestCancel(t *testing.T) {
	c, left, _ := setup(t)
	c.Pane(0).Toggle(filepath.Join(left, "f1.txt"))
	require.NoError(t, c.Copy(0))
	c.Cancel()
	assertUnlocked(t, c)

	err := c.Paste(context.Background(), nil)
	assert.True(t, errors.IsInvalidOperation(err))
}

func TestCutWithoutSelection(t *testing.T) {
	c, _, _ := setup(t)
	err := c.Cut(0)
	assert.True(t, errors.IsEmptySelection(err))
	assertUnlocked(t, c)

	assert.True(t, errors.IsInvalidOperation(c.Copy(5)))
}

func TestOperationsRejectedWhileLocked(t *testing.T) {
	c, left, _ := setup(t)
	c.Pane(0).Toggle(filepath.Join(left, "f1.txt"))
	require.NoError(t, c.Cut(0))
	ctx := context.Background()

	assert.True(t, errors.IsInvalidOperation(c.Remove(ctx, 0)))
	assert.True(t, errors.IsInvalidOperation(c.MakeDir(ctx, 0, "new")))
	assert.True(t, errors.IsInvalidOperation(c.Rename(ctx, filepath.Join(left, "f2.txt"), "g.txt")))
	assert.True(t, errors.IsInvalidOperation(c.ChangePermissions(ctx, filepath.Join(left, "f2.txt"), permissions.FromMode(0o600))))
	assert.True(t, errors.IsInvalidOperation(c.Undo(ctx, nil)))
	assert.True(t, errors.IsInvalidOperation(c.Copy(1)), "only one pending paste")
	assert.FileExists(t, filepath.Join(left, "f1.txt"))
}

func TestConcurrentPasteRunsOnce(t *testing.T) {
	c, left, right := setup(t)
	c.Pane(0).Toggle(filepath.Join(left, "f1.txt"))
	require.NoError(t, c.Copy(0))

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Paste(context.Background(), nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.IsInvalidOperation(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, c.History().Len())
	assert.FileExists(t, filepath.Join(right, "f1.txt"))
	assertUnlocked(t, c)
}

func TestRemoveIsRecordedButNotUndoable(t *testing.T) {
	c, left, _ := setup(t)
	ctx := context.Background()
	c.Pane(0).Toggle(filepath.Join(left, "dir"))

	require.NoError(t, c.Remove(ctx, 0))
	assert.NoDirExists(t, filepath.Join(left, "dir"))
	require.Equal(t, 1, c.History().Len())

	err := c.Undo(ctx, nil)
	assert.True(t, errors.IsInvalidOperation(err))
	assert.Equal(t, 1, c.History().Len(), "non-undoable entries are not consumed")

	assert.True(t, errors.IsEmptySelection(c.Remove(ctx, 0)))
}

func TestMakeDirRenameChmodAndUndo(t *testing.T) {
	c, left, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, c.MakeDir(ctx, 0, "fresh"))
	assert.DirExists(t, filepath.Join(left, "fresh"))

	require.NoError(t, c.Rename(ctx, filepath.Join(left, "f1.txt"), "renamed.txt"))
	assert.FileExists(t, filepath.Join(left, "renamed.txt"))

	require.NoError(t, os.Chmod(filepath.Join(left, "f2.txt"), 0o644))
	require.NoError(t, c.ChangePermissions(ctx, filepath.Join(left, "f2.txt"), permissions.FromMode(0o600)))
	info, err := os.Stat(filepath.Join(left, "f2.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, c.Undo(ctx, nil))
	info, err = os.Stat(filepath.Join(left, "f2.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, c.Undo(ctx, nil))
	assert.FileExists(t, filepath.Join(left, "f1.txt"))

	require.NoError(t, c.Undo(ctx, nil))
	assert.NoDirExists(t, filepath.Join(left, "fresh"))

	assert.True(t, errors.IsInvalidOperation(c.Undo(ctx, nil)))
}

func TestInvalidNames(t *testing.T) {
	c, left, _ := setup(t)
	ctx := context.Background()
	for _, name := range []string{"", ".", "..", "a/b"} {
		assert.True(t, errors.IsInvalidOperation(c.MakeDir(ctx, 0, name)), name)
		assert.True(t, errors.IsInvalidOperation(c.Rename(ctx, filepath.Join(left, "f1.txt"), name)), name)
	}
	assert.NoError(t, c.Rename(ctx, filepath.Join(left, "f1.txt"), "f1.txt"))
}

func TestUndoCopyRemovesCopies(t *testing.T) {
	c, left, right := setup(t)
	ctx := context.Background()
	c.Pane(0).Toggle(filepath.Join(left, "dir"))
	require.NoError(t, c.Copy(0))
	require.NoError(t, c.Paste(ctx, nil))
	assert.DirExists(t, filepath.Join(right, "dir"))

	require.NoError(t, c.Undo(ctx, nil))
	assert.NoDirExists(t, filepath.Join(right, "dir"))
	assert.DirExists(t, filepath.Join(left, "dir"))
}
