package gate

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryAcquireRejectsSecondHolder(t *testing.T) {
	g := NewGate()

	assert.True(t, g.TryAcquire("c1"))
	assert.False(t, g.TryAcquire("c1"))

	g.Release("c1")
	assert.True(t, g.TryAcquire("c1"))
}

func TestDifferentClientsAreIndependent(t *testing.T) {
	g := NewGate()

	assert.True(t, g.TryAcquire("c1"))
	assert.True(t, g.TryAcquire("c2"))
	assert.True(t, g.IsHeld("c1"))
	assert.True(t, g.IsHeld("c2"))
}

// TestAtMostOneHolderUnderConcurrency is the concurrent version of spec
// testable property 1: for any client, at any instant the number of
// active workflows is <= 1.
func TestAtMostOneHolderUnderConcurrency(t *testing.T) {
	g := NewGate()
	var successes int64
	var wg sync.WaitGroup

	const n = 100
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire("c1") {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successes)
}

func TestReleaseOnUnheldClientIsNoop(t *testing.T) {
	g := NewGate()
	g.Release("never-held")
	assert.False(t, g.IsHeld("never-held"))
}
