package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/citation"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const motionSystemPrompt = `You are defense counsel drafting a legal motion. Use the case file and the legal context below. Write a complete, properly formatted motion with citations to supporting statutes and case law where relevant.`

// MotionOutput is the persisted record of one generated motion, including
// whatever the automatic Citation Verifier pass found (spec §4.6 (4)).
type MotionOutput struct {
	MotionType string             `json:"motion_type"`
	Body       string             `json:"body"`
	Citations  *citation.Result   `json:"citations,omitempty"`
	Degraded   *citation.Degraded `json:"citation_verification_error,omitempty"`
}

// GenerateMotion is workflow §4.6 (4): per-case motion generation with an
// automatic Citation Verifier pass on completion.
func (e *Engine) GenerateMotion(ctx context.Context, clientID, caseNumber, motionType string) (err error) {
	defer observe("motion", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	if _, getErr := e.store.GetCase(caseNumber); getErr != nil {
		if apperr.KindOf(getErr) == apperr.KindNotFound {
			return e.notFound(clientID, getErr)
		}
		return e.transportError(eventbus.KindMotion, clientID, getErr)
	}

	caseCtx, buildErr := e.builder.BuildCaseContext(caseNumber)
	if buildErr != nil {
		return e.transportError(eventbus.KindMotion, clientID, buildErr)
	}

	legalCtx, legalErr := e.builder.BuildLegalContext(ctx, []string{motionType}, e.cfg.LegalContextTokenCapKB)
	if legalErr != nil {
		return e.transportError(eventbus.KindMotion, clientID, legalErr)
	}

	prompt := fmt.Sprintf("Motion type: %s\n\n%s\n\n%s", motionType, caseCtx, legalCtx)
	req := llm.StreamRequest{
		SystemPrompt:    motionSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: prompt}},
		ThinkingBudget:  30000,
		MaxOutputTokens: 64000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindMotion, req)
	if runErr != nil {
		return e.transportError(eventbus.KindMotion, clientID, runErr)
	}

	out := MotionOutput{MotionType: motionType, Body: result.ResponseText}

	e.bus.Publish(clientID, eventbus.EventCitationVerificationStart, nil)
	citations := citation.Extract(result.ResponseText)
	verifyResult, degraded := e.verifier.Verify(ctx, citations)
	if degraded != nil {
		out.Degraded = degraded
		e.bus.Publish(clientID, eventbus.EventCitationVerificationDone, degraded)
	} else {
		out.Citations = verifyResult
		e.bus.Publish(clientID, eventbus.EventCitationVerificationDone, verifyResult)
	}

	return e.complete(eventbus.KindMotion, clientID, domain.AnalysisMotion, caseNumber, out)
}
