// Package xerrors holds the sentinel errors and panic messages for the
// rcu package's recoverable and fatal misuse conditions (spec taxonomy:
// MisuseError).
package xerrors

import "errors"

var (
	// ErrAlreadyReleased is returned by operations attempted on a
	// PayloadRef that has already reached a zero reference count.
	ErrAlreadyReleased = errors.New("rcu: payload already released")

	// ErrBadInitialRefCount is returned by Cell.Update when the
	// supplied payload's reference count is not exactly 1.
	ErrBadInitialRefCount = errors.New("rcu: update payload must have a reference count of 1")

	// ErrCellDisposed is returned by operations attempted on a Cell
	// after Dispose has run.
	ErrCellDisposed = errors.New("rcu: cell is disposed")
)

// MessageDoubleRelease is the panic message for a debug-mode
// double-release of the final reference to a payload.
const MessageDoubleRelease = "rcu: double release of payload detected"
