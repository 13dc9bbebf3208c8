package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusOrderingPerClient(t *testing.T) {
	bus := NewBus()
	ch, unregister := bus.Register("client-1")
	defer unregister()

	bus.Publish("client-1", Name(KindCascade, SuffixThinkingStarted), nil)
	bus.Publish("client-1", Name(KindCascade, SuffixThinkingDelta), map[string]string{"text": "a"})
	bus.Publish("client-1", Name(KindCascade, SuffixThinkingComplete), nil)

	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, (<-ch).Type)
	}

	assert.Equal(t, []string{
		"cascade_thinking_started",
		"cascade_thinking_delta",
		"cascade_thinking_complete",
	}, got)
}

func TestBusPublishToUnregisteredClientIsNoop(t *testing.T) {
	bus := NewBus()
	// Must not panic or block.
	bus.Publish("nobody", EventStatus, nil)
}

func TestBusReplaySinceReturnsBufferedTail(t *testing.T) {
	bus := NewBus()
	ch, unregister := bus.Register("client-1")
	defer unregister()

	bus.Publish("client-1", EventStatus, map[string]int{"phase": 1})
	bus.Publish("client-1", EventStatus, map[string]int{"phase": 2})
	bus.Publish("client-1", EventStatus, map[string]int{"phase": 3})

	// Drain the live channel so replay is exercised independently.
	<-ch
	<-ch
	<-ch

	replayed := bus.ReplaySince("client-1", 1)
	require.Len(t, replayed, 2)
	assert.Equal(t, uint64(1), replayed[0].Seq)
	assert.Equal(t, uint64(2), replayed[1].Seq)
}

func TestBusPublishAllBroadcastsToEveryClient(t *testing.T) {
	bus := NewBus()
	ch1, unregister1 := bus.Register("client-1")
	defer unregister1()
	ch2, unregister2 := bus.Register("client-2")
	defer unregister2()

	bus.PublishAll(EventTokenUpdate, map[string]int{"total_input": 42})

	ev1 := <-ch1
	ev2 := <-ch2
	assert.Equal(t, EventTokenUpdate, ev1.Type)
	assert.Equal(t, EventTokenUpdate, ev2.Type)
}

func TestNameIsTotalOverEveryKind(t *testing.T) {
	kinds := []Kind{
		KindHealthCheck, KindDeepAnalysis, KindProsecution, KindDefense, KindJudge,
		KindMotion, KindEvidence, KindChat, KindCascade, KindWidget, KindHearingPrep, KindClientLetter,
		KindSmartActions,
	}
	for _, k := range kinds {
		assert.NotPanics(t, func() { Name(k, SuffixResults) })
	}
}
