package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/citation"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/insight"
)

func TestGenerateMotionRunsCitationVerificationAndWritesInsight(t *testing.T) {
	e, store, bus := newTestEngine(t, "Motion body citing § 16-13-30.")
	e.verifier = citation.NewVerifier(store, nil)
	require.NoError(t, store.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))
	require.NoError(t, store.InsertLegalFact(&domain.LegalFact{CitationToken: "§ 16-13-30", Category: "state_code", Title: "Possession"}))

	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.GenerateMotion(context.Background(), "client-1", "A1", "motion_to_suppress")
	require.NoError(t, err)

	var sawVerificationDone bool
	for i := 0; i < 10; i++ {
		ev := <-ch
		if ev.Type == eventbus.EventCitationVerificationDone {
			sawVerificationDone = true
			res, ok := ev.Payload.(*citation.Result)
			require.True(t, ok)
			assert.Len(t, res.Verified, 1)
			break
		}
	}
	assert.True(t, sawVerificationDone)

	got, err := e.insights.List(insight.Filter{Scope: "A1", AnalysisType: domain.AnalysisMotion})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestGenerateMotionNotFoundSkipsCitationVerification(t *testing.T) {
	e, store, _ := newTestEngine(t)
	e.verifier = citation.NewVerifier(store, nil)

	err := e.GenerateMotion(context.Background(), "client-1", "GHOST", "motion_to_suppress")
	assert.Error(t, err)

	got, err := e.insights.List(insight.Filter{AnalysisType: domain.AnalysisMotion})
	require.NoError(t, err)
	assert.Empty(t, got)
}
