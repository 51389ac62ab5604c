package rcu

import (
	"go.uber.org/atomic"

	"github.com/benhaase/rcu/internal/xatomic"
	"github.com/benhaase/rcu/internal/xerrors"
)

// Cell is the user-facing RCU container. It holds exactly one published
// payload at a time. Readers call Read to obtain a reference-counted
// snapshot and must eventually call Release on it. Writers call Update to
// install a new payload; the displaced one is destroyed only once no
// reader can still reach it.
//
// Cell is safe for concurrent use by any number of readers and writers.
// Dispose is the one exception — it requires the caller to have already
// quiesced every other operation on the Cell.
type Cell[T any] struct {
	dataPtr atomic.Pointer[PayloadRef[T]]

	readers   xatomic.Int64
	epochLock xatomic.Bool

	current atomic.Pointer[retirementNode[T]]
	final   atomic.Pointer[retirementNode[T]]

	// rotations counts successful epoch rotations. It exists purely as
	// instrumentation for tests asserting the rotation-election
	// invariant (at most one rotator at a time, rotation count
	// monotone and bounded by the number of read cycles); it plays no
	// role in the read/update protocol itself.
	rotations xatomic.Int64

	disposed xatomic.Bool
}

// NewCell constructs a Cell publishing initial. initial must have a
// reference count of 1, as returned by NewPayloadRef; Cell takes
// ownership of that reference.
func NewCell[T any](initial *PayloadRef[T]) *Cell[T] {
	c := &Cell[T]{}
	c.dataPtr.Store(initial)
	c.current.Store(newSentinel[T]())
	c.final.Store(newSentinel[T]())
	return c
}

// Read returns a reference-counted snapshot of the currently published
// payload. The caller must eventually call Release (or MustRelease) on
// the returned PayloadRef.
//
// Read never blocks. On the way out, the calling goroutine may
// additionally perform one epoch rotation's worth of work if it happens
// to be the reader whose departure drops the in-flight reader count to
// zero and wins the epoch-rotation election; that work is still
// wait-free; it's bounded by the length of whichever retirement stack has
// aged out.
//
// Read returns nil if the Cell has been disposed.
func (c *Cell[T]) Read() *PayloadRef[T] {
	if c.disposed.Load() {
		return nil
	}

	c.readers.Inc()

	snapshot := c.dataPtr.Load()
	if snapshot == nil {
		// Dispose raced us and already swapped data_ptr to nil;
		// there is nothing left to snapshot.
		c.leaveWindow()
		return nil
	}
	snapshot.Acquire()

	c.leaveWindow()

	return snapshot
}

// leaveWindow decrements the in-flight reader count and, if this call was
// the one that dropped it to zero, attempts to win the epoch-rotation
// election.
func (c *Cell[T]) leaveWindow() {
	remaining := c.readers.Dec()
	if remaining != 0 {
		return
	}
	if !c.epochLock.CompareAndSwap(false, true) {
		return
	}
	c.rotate()
}

// rotate performs one epoch rotation. The caller must have just won the
// epoch lock CAS; rotate releases it on every exit path.
func (c *Cell[T]) rotate() {
	defer c.epochLock.Store(false)

	fresh := newSentinel[T]()
	oldCurrent := c.current.Swap(fresh)
	oldFinal := c.final.Swap(oldCurrent)

	drainRetired(oldFinal)

	c.rotations.Inc()
}

// Update installs next as the newly published payload. next must have a
// reference count of 1; Cell takes ownership of that reference.
//
// The payload that Update displaces is not destroyed synchronously. It is
// pushed onto the current-epoch retirement stack and destroyed only once
// it has aged through a full rotation with no reader left observing it.
//
// Multiple concurrent Updates are linearized by a compare-and-swap loop
// on the live pointer; every Update, including the ones that lose the
// race and retry, eventually retires exactly the payload it displaced.
func (c *Cell[T]) Update(next *PayloadRef[T]) error {
	if c.disposed.Load() {
		return xerrors.ErrCellDisposed
	}
	if next.refCount() != 1 {
		return xerrors.ErrBadInitialRefCount
	}

	old := c.dataPtr.Load()
	for !c.dataPtr.CompareAndSwap(old, next) {
		old = c.dataPtr.Load()
	}

	pushRetired(&c.current, old)

	return nil
}

// Dispose tears the Cell down: it releases the currently published
// payload and drains both retirement stacks.
//
// Dispose is not safe to call while any Read or Update may still be in
// flight on this Cell — the caller is responsible for quiescing the Cell
// first. Calling Read or Update after Dispose returns a disposed sentinel
// (nil, or xerrors.ErrCellDisposed) rather than invoking undefined
// behavior, but that's a defensive backstop, not a substitute for correct
// external synchronization.
func (c *Cell[T]) Dispose() {
	c.dispose()
}

// dispose is the internal form of Dispose; it reports how many payloads
// were drained from each retirement stack (0, 0 on any call after the
// first).
func (c *Cell[T]) dispose() (releasedCurrent, releasedFinal int) {
	if !c.disposed.CompareAndSwap(false, true) {
		return 0, 0
	}

	live := c.dataPtr.Swap(nil)
	current := c.current.Swap(nil)
	final := c.final.Swap(nil)

	if live != nil {
		live.MustRelease()
	}

	releasedCurrent = drainRetired(current)
	releasedFinal = drainRetired(final)
	return releasedCurrent, releasedFinal
}
