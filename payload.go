package rcu

import (
	"github.com/benhaase/rcu/internal/xatomic"
	"github.com/benhaase/rcu/internal/xerrors"
)

// PayloadRef is a reference-counted handle around a caller-owned value.
// A Cell never copies or inspects the payload's data; it only manages the
// lifetime of the handle wrapping it.
//
// PayloadRef is safe for concurrent use by multiple goroutines calling
// Acquire and Release. It is not safe to call Release more than once for
// the same logical reference — each successful Acquire (including the
// implicit one from NewPayloadRef) must be matched by exactly one Release.
type PayloadRef[T any] struct {
	data    T
	destroy func(T)
	refs    xatomic.Int64
}

// NewPayloadRef wraps data in a new PayloadRef with a reference count of 1.
// destroy is called exactly once, when the last reference is released; it
// may be nil if data needs no explicit cleanup.
func NewPayloadRef[T any](data T, destroy func(T)) *PayloadRef[T] {
	p := &PayloadRef[T]{data: data, destroy: destroy}
	p.refs.Store(1)
	return p
}

// Value returns the wrapped data. The caller must hold a live reference
// (an Acquire not yet matched by a Release) for the duration of use.
func (p *PayloadRef[T]) Value() T {
	return p.data
}

// Acquire increments the reference count and returns p, for chaining at
// call sites that hand a payload to more than one holder.
//
// Acquire's precondition is that the caller already holds a non-owning
// view known not to be at zero — e.g. it was obtained while still
// enclosed within a Cell's publish-window, or from another live holder.
// Calling Acquire on a payload that has already reached zero references
// is a misuse error.
func (p *PayloadRef[T]) Acquire() *PayloadRef[T] {
	p.refs.Inc()
	return p
}

// Release decrements the reference count. If this was the last reference,
// it destroys the wrapped data synchronously on the calling goroutine.
//
// Release returns xerrors.ErrAlreadyReleased if the payload's reference
// count was already at or below zero — a programming error the caller
// introduced by releasing more times than it acquired. In builds that
// care about catching this early, treat a non-nil return as fatal; the
// decrement itself is idempotent-safe in the sense that it never goes
// further negative than the first offending call.
func (p *PayloadRef[T]) Release() error {
	remaining := p.refs.Dec()
	if remaining > 0 {
		return nil
	}
	if remaining < 0 {
		// Put the counter back where misuse can't cascade into a
		// second spurious destroy from a concurrent Release.
		p.refs.Store(0)
		return xerrors.ErrAlreadyReleased
	}
	if p.destroy != nil {
		p.destroy(p.data)
	}
	return nil
}

// MustRelease calls Release and panics on misuse, matching the
// assert-in-debug-builds contract described for PayloadRef.release in the
// RCU protocol: a double-release of the final reference is a programming
// error, not a recoverable condition.
func (p *PayloadRef[T]) MustRelease() {
	if err := p.Release(); err != nil {
		panic(xerrors.MessageDoubleRelease)
	}
}

// refCount reports the current reference count, for tests only.
func (p *PayloadRef[T]) refCount() int64 {
	return p.refs.Load()
}
