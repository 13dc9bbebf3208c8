package citation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/domain"
)

func newTestStore(t *testing.T) *corpus.Store {
	t.Helper()
	s, err := corpus.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestVerifyResolvesLocalMatchWithoutExternalCall(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertLegalFact(&domain.LegalFact{
		CitationToken: "§ 16-13-30", Category: "state_code", Title: "Possession",
	}))

	v := NewVerifier(s, nil)
	res, degraded := v.Verify(context.Background(), []string{"§ 16-13-30"})

	require.Nil(t, degraded)
	require.Len(t, res.Verified, 1)
	assert.Equal(t, "Possession", res.Verified[0].CaseName)
}

// TestVerifyDegradesWhenNoExternalProviderConfigured is spec testable
// scenario S5: an unmatched citation with no caselaw.Client configured
// must surface a Degraded carrying the full original citation set, not
// partial results silently dropped.
func TestVerifyDegradesWhenNoExternalProviderConfigured(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertLegalFact(&domain.LegalFact{
		CitationToken: "§ 16-13-30", Category: "state_code", Title: "Possession",
	}))

	v := NewVerifier(s, nil)
	citations := []string{"§ 16-13-30", "384 U.S. 436"}
	res, degraded := v.Verify(context.Background(), citations)

	require.NotNil(t, degraded)
	assert.Equal(t, citations, degraded.LocalCitations)
	assert.Empty(t, res.NotFound)
	assert.Empty(t, res.Ambiguous)
	// The local hit still resolved even though the pass as a whole degraded.
	require.Len(t, res.Verified, 1)
}

func TestVerifyReturnsNilDegradedWhenEveryCitationMatchesLocally(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertLegalFact(&domain.LegalFact{
		CitationToken: "4th Amendment", Category: "constitutional", Title: "Search and seizure",
	}))

	v := NewVerifier(s, nil)
	res, degraded := v.Verify(context.Background(), []string{"4th Amendment"})

	assert.Nil(t, degraded)
	require.Len(t, res.Verified, 1)
}
