package workflow

import (
	"context"
	"time"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const hearingPrepSystemPrompt = `You are defense counsel preparing for an upcoming hearing. Given the case file below, produce a short, scannable hearing prep brief: key dates, what's at stake, the two or three points most likely to come up, and anything the attorney should double-check beforehand. Keep it tight — this is read on the way into the courtroom.`

// HearingPrepOutput is the persisted record of one hearing prep brief.
type HearingPrepOutput struct {
	Brief string `json:"brief"`
}

// RunHearingPrep is workflow §4.6 (7): a small, short-thinking per-case call.
func (e *Engine) RunHearingPrep(ctx context.Context, clientID, caseNumber string) (err error) {
	defer observe("hearing_prep", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	if _, getErr := e.store.GetCase(caseNumber); getErr != nil {
		if apperr.KindOf(getErr) == apperr.KindNotFound {
			return e.notFound(clientID, getErr)
		}
		return e.transportError(eventbus.KindHearingPrep, clientID, getErr)
	}

	caseCtx, buildErr := e.builder.BuildCaseContext(caseNumber)
	if buildErr != nil {
		return e.transportError(eventbus.KindHearingPrep, clientID, buildErr)
	}

	req := llm.StreamRequest{
		SystemPrompt:    hearingPrepSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: caseCtx}},
		ThinkingBudget:  5000,
		MaxOutputTokens: 3000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindHearingPrep, req)
	if runErr != nil {
		return e.transportError(eventbus.KindHearingPrep, clientID, runErr)
	}

	out := HearingPrepOutput{Brief: result.ResponseText}
	return e.complete(eventbus.KindHearingPrep, clientID, domain.AnalysisHearingPrep, caseNumber, out)
}
