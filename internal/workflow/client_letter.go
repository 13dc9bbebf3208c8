package workflow

import (
	"context"
	"time"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const clientLetterSystemPrompt = `You are a public defender writing a plain-language letter to your client. Given the case file below, explain the current status, what happens next, and what the client needs to do, in plain language a non-lawyer can follow. No legal jargon; no citations. Output plain text only, formatted as a letter.`

// ClientLetterOutput is the persisted record of one plain-language letter.
type ClientLetterOutput struct {
	Letter string `json:"letter"`
}

// RunClientLetter is workflow §4.6 (8): a short-thinking, plain-text
// transform of the case for the client, not the court.
func (e *Engine) RunClientLetter(ctx context.Context, clientID, caseNumber string) (err error) {
	defer observe("client_letter", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	if _, getErr := e.store.GetCase(caseNumber); getErr != nil {
		if apperr.KindOf(getErr) == apperr.KindNotFound {
			return e.notFound(clientID, getErr)
		}
		return e.transportError(eventbus.KindClientLetter, clientID, getErr)
	}

	caseCtx, buildErr := e.builder.BuildCaseContext(caseNumber)
	if buildErr != nil {
		return e.transportError(eventbus.KindClientLetter, clientID, buildErr)
	}

	req := llm.StreamRequest{
		SystemPrompt:    clientLetterSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: caseCtx}},
		ThinkingBudget:  5000,
		MaxOutputTokens: 4000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindClientLetter, req)
	if runErr != nil {
		return e.transportError(eventbus.KindClientLetter, clientID, runErr)
	}

	out := ClientLetterOutput{Letter: result.ResponseText}
	return e.complete(eventbus.KindClientLetter, clientID, domain.AnalysisClientLetter, caseNumber, out)
}
