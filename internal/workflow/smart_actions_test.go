package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/eventbus"
)

func TestRunSmartActionsPublishesParsedActions(t *testing.T) {
	response := `[{"label": "File motion to suppress", "action_type": "motion", "case_number": "A1", "motion_type": "Motion to Suppress Evidence", "reason": "r", "urgency": "high"}]`
	e, _, bus := newTestEngine(t, response)

	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.RunSmartActions(context.Background(), "client-1", "health check found a deadline issue", "health_check")
	require.NoError(t, err)

	var ev eventbus.Event
	for i := 0; i < 10; i++ {
		ev = <-ch
		if ev.Type == eventbus.Name(eventbus.KindSmartActions, eventbus.SuffixResults) {
			break
		}
	}
	assert.Equal(t, eventbus.Name(eventbus.KindSmartActions, eventbus.SuffixResults), ev.Type)
	out, ok := ev.Payload.(SmartActionsOutput)
	require.True(t, ok)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, "motion", out.Actions[0].ActionType)
	assert.Equal(t, "A1", out.Actions[0].CaseNumber)
}

func TestRunSmartActionsDegradesToEmptyActionsOnParseFailure(t *testing.T) {
	e, _, bus := newTestEngine(t, "not json")

	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.RunSmartActions(context.Background(), "client-1", "some context", "deep_analysis")
	require.NoError(t, err)

	var ev eventbus.Event
	for i := 0; i < 10; i++ {
		ev = <-ch
		if ev.Type == eventbus.Name(eventbus.KindSmartActions, eventbus.SuffixResults) {
			break
		}
	}
	out, ok := ev.Payload.(SmartActionsOutput)
	require.True(t, ok)
	assert.Empty(t, out.Actions)
}
