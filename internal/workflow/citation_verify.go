package workflow

import (
	"context"
	"time"

	"github.com/eliBenven/case-nexus/internal/citation"
	"github.com/eliBenven/case-nexus/internal/eventbus"
)

// VerifyCitations is the standalone verify_citations command: the client
// supplies arbitrary text (not necessarily a just-generated motion) and
// gets the same citation_verification_started/results pair GenerateMotion
// fires automatically after drafting. caseNumber is optional context
// threaded through to the results payload; it does not gate a case
// lookup, since the text itself is the only required input.
func (e *Engine) VerifyCitations(ctx context.Context, clientID, text, caseNumber string) (err error) {
	defer observe("verify_citations", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	e.bus.Publish(clientID, eventbus.EventCitationVerificationStart, map[string]string{"case_number": caseNumber})

	citations := citation.Extract(text)
	result, degraded := e.verifier.Verify(ctx, citations)
	if degraded != nil {
		e.bus.Publish(clientID, eventbus.EventCitationVerificationDone, degraded)
		return nil
	}
	e.bus.Publish(clientID, eventbus.EventCitationVerificationDone, result)
	return nil
}
