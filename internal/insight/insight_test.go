package insight

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/domain"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	s, err := corpus.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s.DB())
}

func TestAppendAndListNewestFirst(t *testing.T) {
	l := newTestLog(t)

	_, err := Append(l, domain.AnalysisHealthCheck, domain.ScopeFullCaseload, map[string]string{"n": "1"})
	require.NoError(t, err)
	_, err = Append(l, domain.AnalysisHealthCheck, domain.ScopeFullCaseload, map[string]string{"n": "2"})
	require.NoError(t, err)

	got, err := l.List(Filter{Scope: domain.ScopeFullCaseload})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Contains(t, got[0].Payload, `"2"`)
	require.Contains(t, got[1].Payload, `"1"`)
}

func TestSupersededHealthCheckInsightStillDiscoverable(t *testing.T) {
	// Open question 1: the Insight Log never deletes; only the
	// Alert/Connection/PriorityAction lists it's derived from are
	// replaced wholesale elsewhere.
	l := newTestLog(t)

	_, err := Append(l, domain.AnalysisHealthCheck, domain.ScopeFullCaseload, map[string]string{"run": "first"})
	require.NoError(t, err)
	_, err = Append(l, domain.AnalysisHealthCheck, domain.ScopeFullCaseload, map[string]string{"run": "second"})
	require.NoError(t, err)

	got, err := l.List(Filter{AnalysisType: domain.AnalysisHealthCheck})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestListFiltersByScopeAndType(t *testing.T) {
	l := newTestLog(t)

	_, err := Append(l, domain.AnalysisDeepAnalysis, "A1", map[string]string{"x": "1"})
	require.NoError(t, err)
	_, err = Append(l, domain.AnalysisHealthCheck, domain.ScopeFullCaseload, map[string]string{"x": "2"})
	require.NoError(t, err)
	_, err = Append(l, domain.AnalysisDeepAnalysis, "A2", map[string]string{"x": "3"})
	require.NoError(t, err)

	got, err := l.List(Filter{Scope: "A1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.AnalysisDeepAnalysis, got[0].AnalysisType)

	got, err = l.List(Filter{AnalysisType: domain.AnalysisDeepAnalysis})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestListRespectsLimit(t *testing.T) {
	l := newTestLog(t)
	for i := 0; i < 5; i++ {
		_, err := Append(l, domain.AnalysisChat, "A1", map[string]int{"i": i})
		require.NoError(t, err)
	}

	got, err := l.List(Filter{Scope: "A1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
}
