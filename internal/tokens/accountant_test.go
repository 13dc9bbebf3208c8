package tokens

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/eventbus"
)

func TestAddAccumulatesAndBroadcasts(t *testing.T) {
	bus := eventbus.NewBus()
	ch, unregister := bus.Register("client-1")
	defer unregister()

	a := NewAccountant(bus)
	snap := a.Add(Delta{Input: 10, Output: 5, Thinking: 2})

	assert.Equal(t, int64(10), snap.TotalInput)
	assert.Equal(t, int64(5), snap.TotalOutput)
	assert.Equal(t, int64(2), snap.TotalThinking)
	assert.Equal(t, int64(1), snap.CallCount)

	ev := <-ch
	assert.Equal(t, eventbus.EventTokenUpdate, ev.Type)
}

func TestAddIsMonotonicUnderConcurrency(t *testing.T) {
	bus := eventbus.NewBus()
	a := NewAccountant(bus)

	var wg sync.WaitGroup
	const n = 50
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Add(Delta{Input: 1, Output: 1, Thinking: 1})
		}()
	}
	wg.Wait()

	snap := a.Snapshot()
	require.Equal(t, int64(n), snap.TotalInput)
	require.Equal(t, int64(n), snap.TotalOutput)
	require.Equal(t, int64(n), snap.TotalThinking)
	require.Equal(t, int64(n), snap.CallCount)
}

func TestSnapshotNeverDecreases(t *testing.T) {
	bus := eventbus.NewBus()
	a := NewAccountant(bus)

	var prev Snapshot
	for i := 0; i < 10; i++ {
		snap := a.Add(Delta{Input: int64(i), Output: int64(i), Thinking: int64(i)})
		assert.GreaterOrEqual(t, snap.TotalInput, prev.TotalInput)
		assert.GreaterOrEqual(t, snap.TotalOutput, prev.TotalOutput)
		assert.GreaterOrEqual(t, snap.TotalThinking, prev.TotalThinking)
		assert.Greater(t, snap.CallCount, prev.CallCount)
		prev = snap
	}
}
