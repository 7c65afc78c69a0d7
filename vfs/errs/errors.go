// Package errs is the VFS's error taxonomy: a coarse, user-visible
// ErrorCode returned from every operation, and an Error type that can
// additionally carry a detailed inner diagnostic for the log. It is kept
// separate from package vfs so that internal/lookup and internal/inode
// can construct VFS-flavored errors without importing the façade
// package that in turn imports them.
package errs

import "fmt"

// ErrorCode is the coarse, user-visible result of a VFS operation. The
// SFTP layer maps these directly onto wire status codes; it never sees
// the detailed internal diagnostic behind an Error.
type ErrorCode int

const (
	OK ErrorCode = iota
	OutOfHandles
	PermissionDenied
	NoSuchFileOrDirectory
	NotADirectory
	NotAFile
	InternalError
	IOError
)

var errorCodeStrings = map[ErrorCode]string{
	OK:                    "OK",
	OutOfHandles:          "out of handles",
	PermissionDenied:      "permission denied",
	NoSuchFileOrDirectory: "no such file or directory",
	NotADirectory:         "not a directory",
	NotAFile:              "not a file",
	InternalError:         "internal error",
	IOError:               "I/O error",
}

// String renders the coarse, user-safe description of a code, mirroring
// the source's error_str().
func (c ErrorCode) String() string {
	if s, ok := errorCodeStrings[c]; ok {
		return s
	}
	return "unknown error"
}

// Error is the VFS's error type: a coarse public Code plus an optional
// detailed inner cause meant only for logs. Callers should switch on Code
// and never parse Error(); the inner cause is reachable through Unwrap
// for logging, not through this string.
type Error struct {
	Code ErrorCode
	// inner is the detailed diagnostic, exposed through Unwrap but never
	// surfaced to the caller through Error().
	inner error
}

func (e *Error) Error() string {
	return e.Code.String()
}

// Unwrap exposes the inner diagnostic to errors.Is/As and to the logger,
// without putting it in the user-facing Error() string.
func (e *Error) Unwrap() error {
	return e.inner
}

// NewError builds an Error with no further diagnostic detail.
func NewError(code ErrorCode) *Error {
	return &Error{Code: code}
}

// NewErrorf builds an Error carrying a formatted diagnostic for the log,
// while Error() itself still renders only the coarse code.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, inner: fmt.Errorf(format, args...)}
}

// CodeOf extracts the coarse code from any error, treating a non-*Error
// as InternalError so callers never have to type-assert defensively.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return OK
	}
	if verr, ok := err.(*Error); ok {
		return verr.Code
	}
	return InternalError
}
