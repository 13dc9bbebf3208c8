package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const smartActionsSystemPrompt = `You are Case Nexus. Based on the analysis just completed, suggest 3-5 specific next actions the attorney should take.

Return ONLY valid JSON — an array of action objects:
[
  {"label": "Short button label (max 6 words)", "action_type": "deep_analysis|adversarial|motion|hearing_prep|client_letter|investigate", "case_number": "case number or null", "motion_type": "only if action_type is motion", "reason": "one sentence explaining why this matters now", "urgency": "critical|high|medium"}
]

Actions must be specific to the analysis findings, not generic.`

// SmartAction is one suggested follow-up the model proposed after a
// completed analysis.
type SmartAction struct {
	Label      string `json:"label"`
	ActionType string `json:"action_type"`
	CaseNumber string `json:"case_number,omitempty"`
	MotionType string `json:"motion_type,omitempty"`
	Reason     string `json:"reason"`
	Urgency    string `json:"urgency"`
}

// SmartActionsOutput is the request_smart_actions response; it writes no
// Insight (like create_widget, it is an ephemeral client-facing
// suggestion, not a durable analysis record).
type SmartActionsOutput struct {
	Actions []SmartAction `json:"actions"`
}

// RunSmartActions is the cross-workflow "what should I do next" call: the
// client passes back the context of whichever of the nine workflows just
// finished (health check, deep analysis, adversarial, motion, evidence,
// hearing prep, or client letter) along with that workflow's name, and
// gets 3-5 concrete follow-ups. It is intentionally not tied to any one
// workflow's namespace or AnalysisType — any completed analysis can
// trigger it.
func (e *Engine) RunSmartActions(ctx context.Context, clientID, analysisContext, analysisType string) (err error) {
	defer observe("smart_actions", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	truncated := analysisContext
	if len(truncated) > 3000 {
		truncated = truncated[:3000]
	}
	prompt := fmt.Sprintf("The following %s analysis was just completed:\n\n%s\n\nBased on these findings, suggest 3-5 specific next actions.", analysisType, truncated)

	req := llm.StreamRequest{
		SystemPrompt:    smartActionsSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: prompt}},
		ThinkingBudget:  5000,
		MaxOutputTokens: 9096,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindSmartActions, req)
	if runErr != nil {
		return e.transportError(eventbus.KindSmartActions, clientID, runErr)
	}

	var out SmartActionsOutput
	if parseErr := parseJSONArray(result.ResponseText, &out.Actions); parseErr != nil {
		out.Actions = nil
	}
	e.bus.Publish(clientID, eventbus.Name(eventbus.KindSmartActions, eventbus.SuffixResults), out)
	return nil
}
