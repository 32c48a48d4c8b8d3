package common

import (
	"sync"
	"testing"

	"duopane/internal/errors"
	"duopane/internal/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertLockMatchesMode(t *testing.T, s *OperationState) {
	t.Helper()
	_, locked := s.Lock()
	assert.Equal(t, s.Mode() != Normal, locked)
}

func TestOperationStateLifecycle(t *testing.T) {
	var s OperationState
	assert.Equal(t, Normal, s.Mode())
	assertLockMatchesMode(t, &s)

	sel := selection.Of("/a/f1.txt")
	require.NoError(t, s.Begin(SelectForMove, 1, sel))
	assert.Equal(t, SelectForMove, s.Mode())
	panel, locked := s.Lock()
	assert.True(t, locked)
	assert.Equal(t, 0, panel, "the opposite pane is locked")
	assertLockMatchesMode(t, &s)

	p, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, sel, p.Selection)
	assert.Equal(t, 1, p.SourcePanel)
	assert.Equal(t, 0, p.TargetPanel)

	err := s.Begin(SelectForCopy, 0, sel)
	assert.True(t, errors.IsInvalidOperation(err))
	assert.Equal(t, SelectForMove, s.Mode())

	done, ok := s.Finish()
	require.True(t, ok)
	assert.Equal(t, SelectForMove, done.Mode)
	assert.Equal(t, Normal, s.Mode())
	assertLockMatchesMode(t, &s)

	_, ok = s.Finish()
	assert.False(t, ok)
}

func TestOperationStateRejectsBadBegin(t *testing.T) {
	var s OperationState

	err := s.Begin(Normal, 0, selection.Of("/x"))
	assert.True(t, errors.IsInvalidOperation(err))

	err = s.Begin(SelectForCopy, 2, selection.Of("/x"))
	assert.True(t, errors.IsInvalidOperation(err))

	err = s.Begin(SelectForCopy, 0, selection.Of())
	assert.True(t, errors.IsEmptySelection(err))

	assert.Equal(t, Normal, s.Mode())
	assertLockMatchesMode(t, &s)
}

func TestOperationStateCancel(t *testing.T) {
	var s OperationState
	require.NoError(t, s.Begin(SelectForCopy, 0, selection.Of("/x")))
	s.Cancel()
	assert.Equal(t, Normal, s.Mode())
	assertLockMatchesMode(t, &s)
	s.Cancel()
	assert.Equal(t, Normal, s.Mode())
}

func TestOperationStateConcurrentBegin(t *testing.T) {
	var s OperationState
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(panel int) {
			defer wg.Done()
			if s.Begin(SelectForCopy, panel%2, selection.Of("/x")) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assertLockMatchesMode(t, &s)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "select_for_move", SelectForMove.String())
	assert.Equal(t, "select_for_copy", SelectForCopy.String())
}

func TestOperationStatePendingRejectsBeforeSelectionCheck(t *testing.T) {
	var s OperationState
	require.NoError(t, s.Begin(SelectForMove, 0, selection.Of("/x")))

	err := s.Begin(SelectForCopy, 1, selection.Of())
	assert.True(t, errors.IsInvalidOperation(err))
	assert.False(t, errors.IsEmptySelection(err))
	assert.Equal(t, SelectForMove, s.Mode())
}

func TestOperationStateClaim(t *testing.T) {
	var s OperationState
	_, ok := s.Claim()
	assert.False(t, ok, "nothing pending")

	require.NoError(t, s.Begin(SelectForCopy, 0, selection.Of("/x")))
	p, ok := s.Claim()
	require.True(t, ok)
	assert.Equal(t, SelectForCopy, p.Mode)

	_, ok = s.Claim()
	assert.False(t, ok, "already in flight")
	s.Cancel()
	assert.Equal(t, SelectForCopy, s.Mode(), "an in-flight paste keeps the lock")
	assertLockMatchesMode(t, &s)

	_, ok = s.Finish()
	require.True(t, ok)
	assert.Equal(t, Normal, s.Mode())

	require.NoError(t, s.Begin(SelectForMove, 1, selection.Of("/y")))
	_, ok = s.Claim()
	assert.True(t, ok, "Finish resets the claim")
}
