package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())
	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestFileErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		msg   string
	}{
		{"already exists", NewAlreadyExists("/b/f1.txt"), IsAlreadyExists, "file already exists: /b/f1.txt"},
		{"not found", NewNotFound("/a/gone", nil), IsNotFound, "file does not exist: /a/gone"},
		{"traversal", NewTraversalError("/a/dir/secret", nil), IsTraversalError, "cannot read entry while traversing directory: /a/dir/secret"},
		{"invalid", NewInvalidOperation("nothing to paste", ""), IsInvalidOperation, "nothing to paste"},
		{"failed", NewOperationFailed("copy failed", "/b/x", os.ErrClosed), IsOperationFailed, "copy failed: /b/x: file already closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestPermissionError(t *testing.T) {
	err := NewPermissionError(AccessWrite, "/b", nil)
	assert.Equal(t, "permission denied (write): /b", err.Error())
	assert.Equal(t, PermissionDenied, err.Kind())
	assert.Equal(t, "/b", err.Path())

	assert.True(t, IsPermissionDenied(err, AccessWrite))
	assert.True(t, IsPermissionDenied(err, ""))
	assert.False(t, IsPermissionDenied(err, AccessRead))

	wrapped := fmt.Errorf("paste: %w", err)
	assert.True(t, IsPermissionDenied(wrapped, AccessWrite))
	assert.Equal(t, PermissionDenied, KindOf(wrapped))
	assert.Equal(t, "/b", PathOf(wrapped))
}

func TestEmptySelection(t *testing.T) {
	assert.True(t, IsEmptySelection(ErrEmptySelection))
	assert.True(t, errors.Is(Wrap(ErrEmptySelection, "remove"), ErrEmptySelection))
	assert.False(t, IsEmptySelection(New("other")))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(nil))
	assert.Equal(t, Unknown, KindOf(os.ErrNotExist))
	assert.Equal(t, NotFound, KindOf(Wrap(NewNotFound("/x", os.ErrNotExist), "stat")))
	assert.Equal(t, "not_found", NotFound.String())
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("invalid setting", "operations.poll_interval_ms", InvalidConfig, nil)
	assert.Equal(t, "invalid setting: operations.poll_interval_ms", err.Error())
	assert.True(t, IsInvalidConfig(err))
	assert.Equal(t, "operations.poll_interval_ms", err.Param())
}
