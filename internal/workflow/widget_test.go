package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/insight"
)

// TestCreateWidgetIsNotDurable confirms the spec's distinction between the
// nine named workflows and the ad-hoc create_widget command: a widget call
// publishes widget_results but appends no Insight.
func TestCreateWidgetIsNotDurable(t *testing.T) {
	e, store, bus := newTestEngine(t, "| Case | Status |\n|---|---|\n| A1 | open |")
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	ch, unregister := bus.Register("client-1")
	defer unregister()

	require.NoError(t, e.CreateWidget(context.Background(), "client-1", "show me a table of open cases"))

	var ev eventbus.Event
	for i := 0; i < 10; i++ {
		ev = <-ch
		if ev.Type == eventbus.Name(eventbus.KindWidget, eventbus.SuffixResults) {
			break
		}
	}
	assert.Equal(t, eventbus.Name(eventbus.KindWidget, eventbus.SuffixResults), ev.Type)
	payload, ok := ev.Payload.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, payload["markdown"], "A1")

	got, err := e.insights.List(insight.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
