package workflow

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const evidenceSystemPrompt = `You are a defense analyst reviewing one piece of evidence in the context of its case. Describe what is shown or documented, flag anything favorable or unfavorable to the defense, and note any chain-of-custody or authenticity concerns.`

type EvidenceOutput struct {
	EvidenceID string `json:"evidence_id"`
	Multimodal bool   `json:"multimodal"`
	Analysis   string `json:"analysis"`
}

// AnalyzeEvidence is workflow §4.6 (5): a multimodal call over one
// evidence item's referenced media, falling back to a text-only call over
// the evidence record when no media file is available.
func (e *Engine) AnalyzeEvidence(ctx context.Context, clientID, caseNumber, evidenceID string) (err error) {
	defer observe("evidence", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	item, getErr := e.store.GetEvidenceItem(caseNumber, evidenceID)
	if getErr != nil {
		if apperr.KindOf(getErr) == apperr.KindNotFound {
			return e.notFound(clientID, getErr)
		}
		return e.transportError(eventbus.KindEvidence, clientID, getErr)
	}

	caseCtx, buildErr := e.builder.BuildCaseContext(caseNumber)
	if buildErr != nil {
		return e.transportError(eventbus.KindEvidence, clientID, buildErr)
	}

	mediaPath := item.MediaPath
	if mediaPath == "" {
		mediaPath = item.PosterPath
	}

	multimodal := mediaPath != "" && fileExists(mediaPath)
	prompt := fmt.Sprintf("%s\n\n## Evidence Item %s\n- Type: %s\n- Title: %s\n- Description: %s\n",
		caseCtx, item.ID, item.Type, item.Title, item.Description)
	if !multimodal {
		prompt += "\nNo media file is available; analyze from the record alone.\n"
	}

	segments := []llm.Segment{{Kind: llm.SegUserText, Text: prompt}}
	req := llm.StreamRequest{
		SystemPrompt:    evidenceSystemPrompt,
		Segments:        segments,
		ThinkingBudget:  15000,
		MaxOutputTokens: 8000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindEvidence, req)
	if runErr != nil {
		return e.transportError(eventbus.KindEvidence, clientID, runErr)
	}

	out := EvidenceOutput{EvidenceID: item.ID, Multimodal: multimodal, Analysis: result.ResponseText}
	return e.complete(eventbus.KindEvidence, clientID, domain.AnalysisEvidence, caseNumber, out)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
