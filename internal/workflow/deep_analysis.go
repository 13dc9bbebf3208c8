package workflow

import (
	"context"
	"time"

	"github.com/eliBenven/case-nexus/internal/apperr"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/metrics"
)

const deepAnalysisSystemPrompt = `You are a criminal defense strategist reviewing one case in depth.
Respond with a single JSON object with these fields: executive_summary, prosecution_strength_score (0-100),
key_facts (array of strings), defense_strategies (array of strings), evidence_analysis (string),
constitutional_issues (array of strings), witness_analysis (string), plea_recommendation (string),
conviction_probability (0-100), recommended_motions (array of strings), action_timeline (array of strings),
overall_assessment (string).`

// DeepAnalysisOutput is workflow §4.6 (2)'s structured assessment.
type DeepAnalysisOutput struct {
	ExecutiveSummary        string   `json:"executive_summary"`
	ProsecutionStrengthScore int     `json:"prosecution_strength_score"`
	KeyFacts                 []string `json:"key_facts"`
	DefenseStrategies        []string `json:"defense_strategies"`
	EvidenceAnalysis         string   `json:"evidence_analysis"`
	ConstitutionalIssues     []string `json:"constitutional_issues"`
	WitnessAnalysis          string   `json:"witness_analysis"`
	PleaRecommendation       string   `json:"plea_recommendation"`
	ConvictionProbability    int      `json:"conviction_probability"`
	RecommendedMotions       []string `json:"recommended_motions"`
	ActionTimeline           []string `json:"action_timeline"`
	OverallAssessment        string   `json:"overall_assessment"`
}

// RunDeepAnalysis is workflow §4.6 (2): per-case structured assessment.
// On a parse failure the raw text is still delivered and logged (spec §7
// ParseError, testable scenario S6).
func (e *Engine) RunDeepAnalysis(ctx context.Context, clientID, caseNumber string) (err error) {
	defer observe("deep_analysis", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	if _, getErr := e.store.GetCase(caseNumber); getErr != nil {
		if apperr.KindOf(getErr) == apperr.KindNotFound {
			return e.notFound(clientID, getErr)
		}
		return e.transportError(eventbus.KindDeepAnalysis, clientID, getErr)
	}

	caseCtx, buildErr := e.builder.BuildCaseContext(caseNumber)
	if buildErr != nil {
		return e.transportError(eventbus.KindDeepAnalysis, clientID, buildErr)
	}

	req := llm.StreamRequest{
		SystemPrompt:    deepAnalysisSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: caseCtx}},
		ThinkingBudget:  e.cfg.DeepAnalysisThinkingKTok * 1000,
		MaxOutputTokens: 16000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindDeepAnalysis, req)
	if runErr != nil {
		return e.transportError(eventbus.KindDeepAnalysis, clientID, runErr)
	}

	var out DeepAnalysisOutput
	if parseErr := parseJSONObject(result.ResponseText, &out); parseErr != nil {
		metrics.ParseFailureTotal.WithLabelValues("deep_analysis").Inc()
		return e.complete(eventbus.KindDeepAnalysis, clientID, domain.AnalysisDeepAnalysis, caseNumber,
			parseFailure{ResponseText: result.ResponseText})
	}

	return e.complete(eventbus.KindDeepAnalysis, clientID, domain.AnalysisDeepAnalysis, caseNumber, out)
}
