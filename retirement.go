package rcu

import "go.uber.org/atomic"

// retirementNode is one link in a retirement stack: a lock-free,
// singly-linked LIFO of payloads scheduled for destruction at a future
// epoch boundary. A node whose payload is nil is a sentinel — every
// retirement stack is terminated by one, so a push never has to special
// case a nil head.
type retirementNode[T any] struct {
	payload *PayloadRef[T]
	next    atomic.Pointer[retirementNode[T]]
}

// newSentinel allocates a fresh, empty retirement-stack terminator.
func newSentinel[T any]() *retirementNode[T] {
	return &retirementNode[T]{}
}

// pushRetired pushes payload onto the Treiber stack rooted at head. It is
// safe under any number of concurrent pushers. It carries no ABA
// protection; that's safe here only because nodes pushed onto head are
// never freed while a push may still observe them — head is drained only
// after it has been rotated out from under concurrent pushers under the
// epoch lock (see Cell.rotate).
func pushRetired[T any](head *atomic.Pointer[retirementNode[T]], payload *PayloadRef[T]) {
	n := &retirementNode[T]{payload: payload}
	old := head.Load()
	for {
		n.next.Store(old)
		if head.CompareAndSwap(old, n) {
			return
		}
		old = head.Load()
	}
}

// drainRetired walks the chain starting at node, releasing every
// non-sentinel payload and discarding every node. It reports how many
// payloads it released.
//
// drainRetired is only safe to call by a thread with exclusive ownership
// of the chain — for a rotated-out final stack, that's guaranteed by the
// epoch lock: only the elected rotator ever holds a reference to the old
// final head.
func drainRetired[T any](node *retirementNode[T]) int {
	released := 0
	for node != nil {
		next := node.next.Load()
		if node.payload != nil {
			node.payload.MustRelease()
			released++
		}
		node = next
	}
	return released
}
