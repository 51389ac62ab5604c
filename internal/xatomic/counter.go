// Package xatomic re-exports the go.uber.org/atomic scalar primitives used
// by the rcu package, so the rest of the module imports one name for every
// lock-free counter and flag it needs. Generic atomic.Pointer[T] values are
// used directly from go.uber.org/atomic at the call site, since a type
// alias can't carry its own type parameter on the Go version this module
// targets.
package xatomic

import "go.uber.org/atomic"

type (
	// Int64 is a lock-free int64, used for reference counts and the
	// in-flight reader gate.
	Int64 = atomic.Int64

	// Bool is a lock-free boolean, used for the epoch-rotation
	// mutual-exclusion flag and one-shot disposal guards.
	Bool = atomic.Bool
)
