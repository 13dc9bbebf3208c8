package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliBenven/case-nexus/internal/citation"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
)

func TestVerifyCitationsOnArbitraryTextWithoutACase(t *testing.T) {
	e, store, bus := newTestEngine(t)
	e.verifier = citation.NewVerifier(store, nil)
	require.NoError(t, store.InsertLegalFact(&domain.LegalFact{CitationToken: "§ 16-13-30", Category: "state_code", Title: "Possession"}))

	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.VerifyCitations(context.Background(), "client-1", "Arbitrary text citing § 16-13-30.", "")
	require.NoError(t, err)

	started := <-ch
	assert.Equal(t, eventbus.EventCitationVerificationStart, started.Type)

	done := <-ch
	assert.Equal(t, eventbus.EventCitationVerificationDone, done.Type)
	res, ok := done.Payload.(*citation.Result)
	require.True(t, ok)
	assert.Len(t, res.Verified, 1)
}

func TestVerifyCitationsDegradesWithoutExternalProvider(t *testing.T) {
	e, store, bus := newTestEngine(t)
	e.verifier = citation.NewVerifier(store, nil)

	ch, unregister := bus.Register("client-1")
	defer unregister()

	err := e.VerifyCitations(context.Background(), "client-1", "See 384 U.S. 436 for the rule.", "A1")
	require.NoError(t, err)

	<-ch // started
	done := <-ch
	degraded, ok := done.Payload.(*citation.Degraded)
	require.True(t, ok)
	assert.Equal(t, []string{"384 U.S. 436"}, degraded.LocalCitations)
}
