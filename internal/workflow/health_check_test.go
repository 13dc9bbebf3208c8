package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/insight"
)

// TestHealthCheckHappyPath is spec testable scenario S1: a caseload of
// cases where A1 and A2 share officer "Rodriguez" produces a Connection
// naming both case numbers, plus exactly one health_check Insight scoped
// to full_caseload.
func TestHealthCheckHappyPath(t *testing.T) {
	response := `{
		"alerts": [{"severity": "warning", "type": "deadline", "case_number": "A1", "title": "Hearing soon", "message": "m"}],
		"connections": [{"type": "shared_officer", "confidence": 0.9, "case_numbers": ["A1", "A2"], "title": "Both cases involve Officer Rodriguez", "description": "d"}],
		"priority_actions": [{"case_number": "A1", "action": "File motion", "urgency": "this_week", "reason": "r"}]
	}`
	e, store, _ := newTestEngine(t, response)

	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open", Officer: "Rodriguez"}))
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A2", Defendant: "Roe", Severity: domain.SeverityMisdemeanor, Status: "open", Officer: "Rodriguez"}))
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A3", Defendant: "Poe", Severity: domain.SeverityMisdemeanor, Status: "open", Officer: "Nguyen"}))

	err := e.RunHealthCheck(context.Background(), "client-1")
	require.NoError(t, err)

	conns, err := store.ListConnections()
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.ElementsMatch(t, []string{"A1", "A2"}, conns[0].CaseNumbers)
	assert.Contains(t, conns[0].Type, "shared_officer")

	insights, err := e.insights.List(insight.Filter{Scope: domain.ScopeFullCaseload, AnalysisType: domain.AnalysisHealthCheck})
	require.NoError(t, err)
	require.Len(t, insights, 1)
}

func TestHealthCheckReplacesAlertsWholesaleAcrossRuns(t *testing.T) {
	first := `{"alerts": [{"severity": "critical", "type": "x", "case_number": "A1", "title": "first-run"}], "connections": [], "priority_actions": []}`
	second := `{"alerts": [{"severity": "info", "type": "x", "case_number": "A1", "title": "second-run"}], "connections": [], "priority_actions": []}`
	e, store, _ := newTestEngine(t, first, second)
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	require.NoError(t, e.RunHealthCheck(context.Background(), "client-1"))
	require.NoError(t, e.RunHealthCheck(context.Background(), "client-1"))

	alerts, err := store.ListAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "second-run", alerts[0].Title)

	// Both runs' Insights remain discoverable (spec open question 1).
	got, err := e.insights.List(insight.Filter{AnalysisType: domain.AnalysisHealthCheck})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
