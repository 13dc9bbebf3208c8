package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/insight"
)

func TestAnalyzeEvidenceFallsBackToTextOnlyWithoutMediaFile(t *testing.T) {
	e, store, _ := newTestEngine(t, "No concerns noted.")
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))
	require.NoError(t, store.InsertEvidence(&domain.EvidenceItem{
		ID: "ev-1", CaseNumber: "A1", Type: domain.EvidenceDocument, Title: "Arrest report",
	}))

	err := e.AnalyzeEvidence(context.Background(), "client-1", "A1", "ev-1")
	require.NoError(t, err)

	got, err := e.insights.List(insight.Filter{Scope: "A1", AnalysisType: domain.AnalysisEvidence})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Payload, `"multimodal":false`)
}

func TestAnalyzeEvidenceUnknownEvidenceIsNotFound(t *testing.T) {
	e, store, _ := newTestEngine(t)
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	err := e.AnalyzeEvidence(context.Background(), "client-1", "A1", "ghost-ev")
	assert.Error(t, err)
}
