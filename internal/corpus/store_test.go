package corpus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestListAlertsDropsDanglingCaseReference(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))

	require.NoError(t, s.ReplaceAlerts([]domain.Alert{
		{ID: "al-1", Severity: domain.AlertWarning, Type: "deadline", CaseNumber: "A1", Title: "live"},
		{ID: "al-2", Severity: domain.AlertWarning, Type: "deadline", CaseNumber: "GHOST", Title: "dangling"},
		{ID: "al-3", Severity: domain.AlertInfo, Type: "caseload", CaseNumber: "", Title: "caseload-wide"},
	}))

	alerts, err := s.ListAlerts()
	require.NoError(t, err)

	var titles []string
	for _, a := range alerts {
		titles = append(titles, a.Title)
	}
	require.ElementsMatch(t, []string{"live", "caseload-wide"}, titles)
}

func TestListConnectionsDropsConnectionWithNoLiveCase(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))
	require.NoError(t, s.InsertCase(&domain.Case{CaseNumber: "A2", Defendant: "Roe", Severity: domain.SeverityMisdemeanor, Status: "open"}))

	require.NoError(t, s.ReplaceConnections([]domain.Connection{
		{ID: "c-1", Type: "shared_officer", CaseNumbers: []string{"A1", "A2"}, Title: "both real"},
		{ID: "c-2", Type: "shared_officer", CaseNumbers: []string{"A1", "GHOST"}, Title: "partially dangling"},
		{ID: "c-3", Type: "shared_officer", CaseNumbers: []string{"GHOST1", "GHOST2"}, Title: "fully dangling"},
	}))

	conns, err := s.ListConnections()
	require.NoError(t, err)

	var titles []string
	for _, c := range conns {
		titles = append(titles, c.Title)
	}
	require.ElementsMatch(t, []string{"both real", "partially dangling"}, titles)

	for _, c := range conns {
		if c.Title == "partially dangling" {
			require.Equal(t, []string{"A1"}, c.CaseNumbers)
		}
	}
}

func TestSearchCasesOrdersByCaseNumberAscending(t *testing.T) {
	s := newTestStore(t)
	for _, cn := range []string{"C3", "C1", "C2"} {
		require.NoError(t, s.InsertCase(&domain.Case{CaseNumber: cn, Defendant: "D", Severity: domain.SeverityFelony, Status: "open", Officer: "Rodriguez"}))
	}

	numbers, err := s.SearchCases(CaseFilter{Officer: "Rodriguez"})
	require.NoError(t, err)
	require.Equal(t, []string{"C1", "C2", "C3"}, numbers)
}

func TestDismissAlertRemovesItFromListAlerts(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertCase(&domain.Case{CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open"}))
	require.NoError(t, s.ReplaceAlerts([]domain.Alert{
		{ID: "al-1", Severity: domain.AlertWarning, Type: "deadline", CaseNumber: "A1", Title: "keep"},
		{ID: "al-2", Severity: domain.AlertWarning, Type: "deadline", CaseNumber: "A1", Title: "dismiss me"},
	}))

	require.NoError(t, s.DismissAlert("al-2"))

	alerts, err := s.ListAlerts()
	require.NoError(t, err)
	var titles []string
	for _, a := range alerts {
		titles = append(titles, a.Title)
	}
	require.Equal(t, []string{"keep"}, titles)
}

func TestGetCaseNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetCase("nope")
	require.Error(t, err)
}

func TestGetCaseMarkdownIsDeterministic(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertCase(&domain.Case{
		CaseNumber: "A1", Defendant: "Doe", Severity: domain.SeverityFelony, Status: "open",
		Charges: []string{"DUI"}, Officer: "Rodriguez", Witnesses: []string{"Jane"},
	}))

	a, err := s.GetCaseMarkdown("A1")
	require.NoError(t, err)
	b, err := s.GetCaseMarkdown("A1")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Contains(t, a, "Case A1")
	require.Contains(t, a, "DUI")
}
