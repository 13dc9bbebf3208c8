package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/insight"
)

func TestRunClientLetterHappyPath(t *testing.T) {
	e, store, _ := newTestEngine(t, "Dear client, here is where your case stands.")
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	require.NoError(t, e.RunClientLetter(context.Background(), "client-1", "A1"))

	got, err := e.insights.List(insight.Filter{Scope: "A1", AnalysisType: domain.AnalysisClientLetter})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Payload, "Dear client")
}

func TestRunClientLetterNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	err := e.RunClientLetter(context.Background(), "client-1", "GHOST")
	assert.Error(t, err)
}
