package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/insight"
)

func TestRunHearingPrepHappyPath(t *testing.T) {
	e, store, _ := newTestEngine(t, "Key dates: hearing on the 12th.")
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	require.NoError(t, e.RunHearingPrep(context.Background(), "client-1", "A1"))

	got, err := e.insights.List(insight.Filter{Scope: "A1", AnalysisType: domain.AnalysisHearingPrep})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Payload, "Key dates")
}

func TestRunHearingPrepNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	err := e.RunHearingPrep(context.Background(), "client-1", "GHOST")
	assert.Error(t, err)
}
