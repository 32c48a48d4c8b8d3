package transaction_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"duopane/internal/errors"
	"duopane/internal/selection"
	"duopane/internal/transaction"
	"duopane/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) RebuildAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
}

func (n *countingNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type recordingObserver struct {
	mu       sync.Mutex
	finished []transaction.Kind
	errs     []error
	bytes    int64
}

func (o *recordingObserver) TransactionFinished(kind transaction.Kind, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, kind)
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) BytesCopied(n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bytes += n
}

// panes creates the /a and /b directories of the usual scenarios.
func panes(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.Mkdir(a, 0o755))
	require.NoError(t, os.Mkdir(b, 0o755))
	return a, b
}

func TestMoveSingleFile(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"f1.txt": "original content"})
	notifier := &countingNotifier{}

	tx := transaction.NewMove(selection.Of(filepath.Join(a, "f1.txt")), b, transaction.WithNotifier(notifier))
	require.NoError(t, tx.Execute(context.Background(), nil))

	_, err := os.Stat(filepath.Join(a, "f1.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	data, err := os.ReadFile(filepath.Join(b, "f1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "original content", string(data))
	assert.Equal(t, 1, notifier.Calls())
}

func TestMoveDestinationExists(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"f1.txt": "source"})
	testutils.CreateTestFilesWithContent(t, b, map[string]string{"f1.txt": "already here"})
	before := testutils.Snapshot(t, filepath.Dir(a))
	notifier := &countingNotifier{}

	tx := transaction.NewMove(selection.Of(filepath.Join(a, "f1.txt")), b, transaction.WithNotifier(notifier))
	err := tx.Execute(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
	assert.Equal(t, filepath.Join(b, "f1.txt"), errors.PathOf(err))
	assert.Equal(t, before, testutils.Snapshot(t, filepath.Dir(a)))
	assert.Zero(t, notifier.Calls())
}

func TestMovePreflightAbortsWholeBatch(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{
		"one.txt":   "1",
		"two.txt":   "2",
		"three.txt": "3",
	})
	testutils.CreateTestFilesWithContent(t, b, map[string]string{"three.txt": "collides"})
	before := testutils.Snapshot(t, filepath.Dir(a))

	sel := selection.Of(filepath.Join(a, "one.txt"), filepath.Join(a, "two.txt"), filepath.Join(a, "three.txt"))
	err := transaction.NewMove(sel, b).Execute(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
	assert.Equal(t, before, testutils.Snapshot(t, filepath.Dir(a)), "no instruction may be applied")
}

func TestMoveReportsFirstFailureInOrder(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"x.txt": "x"})
	testutils.CreateTestFilesWithContent(t, b, map[string]string{"x.txt": "x"})

	sel := selection.Of(filepath.Join(a, "missing.txt"), filepath.Join(a, "x.txt"))
	err := transaction.NewMove(sel, b).Execute(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, filepath.Join(a, "missing.txt"), errors.PathOf(err))
}

func TestMoveDuplicateBaseNames(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{
		"left/notes.txt":  "left",
		"right/notes.txt": "right",
	})
	before := testutils.Snapshot(t, filepath.Dir(a))

	sel := selection.Of(filepath.Join(a, "left", "notes.txt"), filepath.Join(a, "right", "notes.txt"))
	err := transaction.NewMove(sel, b).Execute(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
	assert.Equal(t, before, testutils.Snapshot(t, filepath.Dir(a)))
}

func TestMoveIntoItself(t *testing.T) {
	a, _ := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"dir/file.txt": "x"})

	err := transaction.NewMove(selection.Of(filepath.Join(a, "dir")), filepath.Join(a, "dir")).
		Execute(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsInvalidOperation(err))
}

func TestMoveEmptySelection(t *testing.T) {
	_, b := panes(t)
	err := transaction.NewMove(selection.Of(), b).Execute(context.Background(), nil)
	assert.True(t, errors.IsEmptySelection(err))
}

func TestMoveUnwritableDestination(t *testing.T) {
	testutils.SkipIfRoot(t)
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"f1.txt": "x"})
	require.NoError(t, os.Chmod(b, 0o555))
	defer os.Chmod(b, 0o755)
	before := testutils.Snapshot(t, a)

	err := transaction.NewMove(selection.Of(filepath.Join(a, "f1.txt")), b).Execute(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsPermissionDenied(err, errors.AccessWrite))
	assert.Equal(t, filepath.Join(b, "f1.txt"), errors.PathOf(err))
	assert.Equal(t, before, testutils.Snapshot(t, a))
}

func TestMoveUnreadableSource(t *testing.T) {
	testutils.SkipIfRoot(t)
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"secret.txt": "x"})
	require.NoError(t, os.Chmod(filepath.Join(a, "secret.txt"), 0o200))
	defer os.Chmod(filepath.Join(a, "secret.txt"), 0o644)

	err := transaction.NewMove(selection.Of(filepath.Join(a, "secret.txt")), b).Execute(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsPermissionDenied(err, errors.AccessRead))
}

func TestMoveInverseLaw(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{
		"f1.txt":         "one",
		"docs/readme.md": "readme",
		"docs/sub/x.bin": "binary",
	})
	root := filepath.Dir(a)
	before := testutils.Snapshot(t, root)

	tx := transaction.NewMove(selection.Of(filepath.Join(a, "f1.txt"), filepath.Join(a, "docs")), b)
	require.NoError(t, tx.Execute(context.Background(), nil))
	assert.NotEqual(t, before, testutils.Snapshot(t, root))

	revert := tx.Revert()
	assert.Equal(t, transaction.KindMove, revert.Kind())
	require.NoError(t, revert.Execute(context.Background(), nil))
	assert.Equal(t, before, testutils.Snapshot(t, root))
}

func TestMoveRevertSwapsPairs(t *testing.T) {
	tx := transaction.NewMove(selection.Of("/a/f1.txt", "/a/f2.txt"), "/b")
	revert, ok := tx.Revert().(*transaction.Move)
	require.True(t, ok)

	assert.Equal(t, []transaction.Instruction{
		{Source: "/b/f1.txt", Destination: "/a/f1.txt"},
		{Source: "/b/f2.txt", Destination: "/a/f2.txt"},
	}, revert.Instructions())
	assert.True(t, tx.IsAtomic())
	assert.False(t, tx.ReportsProgress())
}

func TestRename(t *testing.T) {
	a, _ := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"old.txt": "content"})

	tx := transaction.NewRename(filepath.Join(a, "old.txt"), filepath.Join(a, "new.txt"))
	require.NoError(t, tx.Execute(context.Background(), nil))
	assert.FileExists(t, filepath.Join(a, "new.txt"))
	assert.NoFileExists(t, filepath.Join(a, "old.txt"))
	assert.Equal(t, "move "+filepath.Join(a, "old.txt")+" to "+filepath.Join(a, "new.txt"), tx.Describe())
}

func TestMoveObserver(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"f1.txt": "x"})
	obs := &recordingObserver{}

	tx := transaction.NewMove(selection.Of(filepath.Join(a, "f1.txt")), b, transaction.WithObserver(obs))
	require.NoError(t, tx.Execute(context.Background(), nil))
	err := tx.Execute(context.Background(), nil)
	require.Error(t, err)

	assert.Equal(t, []transaction.Kind{transaction.KindMove, transaction.KindMove}, obs.finished)
	assert.NoError(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
}

func TestMoveCanceledContext(t *testing.T) {
	a, b := panes(t)
	testutils.CreateTestFilesWithContent(t, a, map[string]string{"f1.txt": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := transaction.NewMove(selection.Of(filepath.Join(a, "f1.txt")), b).Execute(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, filepath.Join(a, "f1.txt"))
}
