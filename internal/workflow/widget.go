package workflow

import (
	"context"
	"time"

	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const widgetSystemPrompt = `You are a caseload analysis assistant. The user has a free-form, ad-hoc request for a view over their caseload. Respond with a single markdown blob that answers it directly — a table, a short list, a focused summary. No preamble.`

// CreateWidget is the ad-hoc, user-requested free-form call from spec §6's
// create_widget control command. Unlike the nine named workflows it is
// not an AnalysisType and writes no Insight — it is a one-shot view, not
// a durable analysis.
func (e *Engine) CreateWidget(ctx context.Context, clientID, request string) (err error) {
	defer observe("widget", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	caseloadCtx, buildErr := e.builder.BuildFullCaseloadContext()
	if buildErr != nil {
		return e.transportError(eventbus.KindWidget, clientID, buildErr)
	}

	prompt := caseloadCtx + "\n\n## Request\n\n" + request

	req := llm.StreamRequest{
		SystemPrompt:    widgetSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: prompt}},
		ThinkingBudget:  5000,
		MaxOutputTokens: 4000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindWidget, req)
	if runErr != nil {
		return e.transportError(eventbus.KindWidget, clientID, runErr)
	}

	e.bus.Publish(clientID, eventbus.Name(eventbus.KindWidget, eventbus.SuffixResults), map[string]string{"markdown": result.ResponseText})
	return nil
}
