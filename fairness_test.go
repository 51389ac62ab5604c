package rcu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// S4 — rotation election fairness. With N readers each doing K reads, the
// number of successful rotations must be at least one and at most N*K,
// and it must never decrease; no goroutine may deadlock.
func TestCell_RotationElectionFairness(t *testing.T) {
	const (
		workers        = 8
		readsPerWorker = 200
	)

	cell := NewCell(newLettersPayload(letters{}))
	defer cell.Dispose()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < readsPerWorker; i++ {
				p := cell.Read()
				assert.NotNil(t, p)
				assert.NoError(t, p.Release())
			}
		}()
	}
	wg.Wait()

	rotations := cell.rotations.Load()
	assert.GreaterOrEqual(t, rotations, int64(1))
	assert.LessOrEqual(t, rotations, int64(workers*readsPerWorker))
}

// The epoch lock is never observed held by more than one goroutine at a
// time: epochLock.CompareAndSwap(false, true) only ever succeeds for one
// caller until that caller stores false again, which this test verifies
// by running a tight concurrent-read workload and asserting the
// invariant never trips an instrumented re-entrancy counter.
func TestCell_EpochLockIsExclusive(t *testing.T) {
	const (
		workers = 16
		reads   = 500
	)

	cell := NewCell(newLettersPayload(letters{}))
	defer cell.Dispose()

	var inRotation int32
	var sawConcurrentRotation bool
	var mu sync.Mutex

	origRotate := func() {
		mu.Lock()
		inRotation++
		if inRotation > 1 {
			sawConcurrentRotation = true
		}
		mu.Unlock()

		cell.rotate()

		mu.Lock()
		inRotation--
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < reads; i++ {
				cell.readers.Inc()
				snap := cell.dataPtr.Load()
				if snap != nil {
					snap.Acquire()
				}
				remaining := cell.readers.Dec()
				if remaining == 0 && cell.epochLock.CompareAndSwap(false, true) {
					origRotate()
				}
				if snap != nil {
					assert.NoError(t, snap.Release())
				}
			}
		}()
	}
	wg.Wait()

	assert.False(t, sawConcurrentRotation, "at most one goroutine may be rotating epochs at a time")
}
