package rcu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3 — 26-thread letter count, ported from the original C test harness's
// test_thread_body/main: each of 26 workers repeatedly snapshots the
// shared 26-int array, copies it, bumps its own slot, and republishes.
func TestCell_TwentySixWorkerLetterCount(t *testing.T) {
	const perWorkerIterations = 1000

	cell := NewCell(newLettersPayload(letters{}))
	defer cell.Dispose()

	var wg sync.WaitGroup
	wg.Add(26)
	for slot := 0; slot < 26; slot++ {
		slot := slot
		go func() {
			defer wg.Done()
			for i := 0; i < perWorkerIterations; i++ {
				snapshot := cell.Read()
				assert.NotNil(t, snapshot)

				// Array values copy on assignment, giving us the
				// deep copy the original C harness performed with
				// an explicit malloc+memcpy.
				next := snapshot.Value()
				assert.NoError(t, snapshot.Release())

				next[slot]++

				assert.NoError(t, cell.Update(NewPayloadRef(next, func(letters) {})))
			}
		}()
	}
	wg.Wait()

	final := cell.Read()
	require.NotNil(t, final)
	defer final.Release()

	for slot, count := range final.Value() {
		assert.Equal(t, perWorkerIterations, count, "slot %d must have been incremented exactly %d times", slot, perWorkerIterations)
	}
}
