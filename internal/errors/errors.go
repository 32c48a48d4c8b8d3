// Package errors provides standardized error handling for duopane.
// It defines the error kinds surfaced by file transactions, typed errors that
// carry the offending path, and helpers for matching them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Transaction error kinds
	AlreadyExists
	PermissionDenied
	NotFound
	TraversalError
	EmptySelection
	InvalidOperation
	OperationFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
)

var kindNames = map[ErrorKind]string{
	Unknown:          "unknown",
	AlreadyExists:    "already_exists",
	PermissionDenied: "permission_denied",
	NotFound:         "not_found",
	TraversalError:   "traversal_error",
	EmptySelection:   "empty_selection",
	InvalidOperation: "invalid_operation",
	OperationFailed:  "operation_failed",
	InvalidConfig:    "invalid_config",
	ConfigNotFound:   "config_not_found",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Access names the permission a PermissionError was raised for.
type Access string

const (
	AccessRead  Access = "read"
	AccessWrite Access = "write"
	AccessChmod Access = "chmod"
)

// ErrEmptySelection is returned by batch transactions built from an empty selection.
var ErrEmptySelection = &ApplicationError{msg: "no files selected", kind: EmptySelection}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// PermissionError is a FileError raised when an access check or a chmod fails.
type PermissionError struct {
	FileError
	access Access
}

// NewPermissionError creates a permission error for the given access kind.
func NewPermissionError(access Access, path string, err error) *PermissionError {
	return &PermissionError{
		FileError: FileError{
			ApplicationError: ApplicationError{
				msg:  fmt.Sprintf("permission denied (%s)", access),
				err:  err,
				kind: PermissionDenied,
			},
			path: path,
		},
		access: access,
	}
}

// Access returns the denied access kind.
func (e *PermissionError) Access() Access {
	return e.access
}

// Constructors for the transaction error kinds.

func NewAlreadyExists(path string) *FileError {
	return NewFileError("file already exists", path, AlreadyExists, nil)
}

func NewNotFound(path string, err error) *FileError {
	return NewFileError("file does not exist", path, NotFound, err)
}

func NewTraversalError(path string, err error) *FileError {
	return NewFileError("cannot read entry while traversing directory", path, TraversalError, err)
}

func NewInvalidOperation(msg string, path string) *FileError {
	return NewFileError(msg, path, InvalidOperation, nil)
}

func NewOperationFailed(msg string, path string, err error) *FileError {
	return NewFileError(msg, path, OperationFailed, err)
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first application error in err's chain.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// PathOf returns the path carried by the first FileError in err's chain.
func PathOf(err error) string {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Path()
	}
	var permErr *PermissionError
	if errors.As(err, &permErr) {
		return permErr.Path()
	}
	return ""
}

// IsAlreadyExists checks if the error is a destination collision
func IsAlreadyExists(err error) bool {
	return KindOf(err) == AlreadyExists
}

// IsNotFound checks if the error is a missing file error
func IsNotFound(err error) bool {
	return KindOf(err) == NotFound
}

// IsTraversalError checks if the error was raised while walking a directory
func IsTraversalError(err error) bool {
	return KindOf(err) == TraversalError
}

// IsEmptySelection checks if the error was raised for an empty selection
func IsEmptySelection(err error) bool {
	return KindOf(err) == EmptySelection
}

// IsInvalidOperation checks if the error rejects an operation in the current state
func IsInvalidOperation(err error) bool {
	return KindOf(err) == InvalidOperation
}

// IsOperationFailed checks if the error happened after preflight passed
func IsOperationFailed(err error) bool {
	return KindOf(err) == OperationFailed
}

// IsPermissionDenied checks if the error is a permission error of the given
// access kind. An empty access matches any kind.
func IsPermissionDenied(err error, access Access) bool {
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		return false
	}
	return access == "" || permErr.Access() == access
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
