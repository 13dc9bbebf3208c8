package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDemoCaseloadParsesSnakeCaseFixture(t *testing.T) {
	s := newTestStore(t)

	fixture := `{
		"cases": [
			{"case_number": "A1", "defendant": "Jane Doe", "severity": "felony", "status": "open",
			 "charges": ["DUI"], "officer": "Rodriguez", "witnesses": ["John Smith"]}
		],
		"evidence": [
			{"id": "ev-1", "case_number": "A1", "type": "dashcam", "title": "Stop footage", "description": "d"}
		],
		"legal_facts": [
			{"citation_token": "§ 16-13-30", "category": "state_code", "title": "Possession", "text": "t"}
		]
	}`

	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	cl, err := s.LoadDemoCaseload(path)
	require.NoError(t, err)
	require.Len(t, cl.Cases, 1)
	require.Equal(t, "A1", cl.Cases[0].CaseNumber)
	require.Equal(t, "Rodriguez", cl.Cases[0].Officer)
	require.Equal(t, []string{"DUI"}, cl.Cases[0].Charges)

	c, err := s.GetCase("A1")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", c.Defendant)
	require.Equal(t, "Rodriguez", c.Officer)

	ev, err := s.GetEvidence("A1")
	require.NoError(t, err)
	require.Len(t, ev, 1)
	require.Equal(t, "Stop footage", ev[0].Title)

	lf, err := s.GetLegalFact("§ 16-13-30")
	require.NoError(t, err)
	require.Equal(t, "Possession", lf.Title)
}
