package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eliBenven/case-nexus/internal/agent"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/metrics"
)

const cascadeSystemPrompt = `You are Cascade Intelligence, an autonomous investigator with access to tools over a public defender's full caseload. Use the tools available to you to find the highest-leverage issue across the caseload right now: a deadline at risk, a pattern across cases, a motion worth filing. Work iteratively — look something up, decide what to check next, and keep going until you have enough to act on.

When you are done, write a strategic brief summarizing what you found, followed by a JSON array of actions under a line that says "ACTIONS:". Each action: {"label": "...", "reason": "...", "action_type": "...", "case_number": "... or omit", "urgency": "this_week"|"this_month"|"routine"}.`

// CascadeAction is one suggested next step the model proposed.
type CascadeAction struct {
	Label      string `json:"label"`
	Reason     string `json:"reason"`
	ActionType string `json:"action_type"`
	CaseNumber string `json:"case_number,omitempty"`
	Urgency    string `json:"urgency"`
}

// CascadeOutput is the persisted record of one Cascade Intelligence run:
// the strategic brief plus whatever actions list the Engine could parse
// out of it (spec §4.6 (9); a parse failure leaves Actions empty but
// still delivers Brief, per spec §7 ParseError).
type CascadeOutput struct {
	Brief           string                 `json:"brief"`
	Actions         []CascadeAction        `json:"actions,omitempty"`
	Rounds          int                    `json:"rounds"`
	ToolInvocations []agent.Invocation     `json:"tool_invocations,omitempty"`
	Truncated       bool                   `json:"truncated"`
}

// RunCascade is workflow §4.6 (9): a caseload-wide agentic investigation
// over the Tool Loop with all nine tools and MAX_ROUNDS = 8.
func (e *Engine) RunCascade(ctx context.Context, clientID string) (err error) {
	defer observe("cascade", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	maxRounds := e.cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = 8
	}

	req := agent.Request{
		SystemPrompt:      cascadeSystemPrompt,
		InitialUserPrompt: "Investigate the full caseload and produce a strategic brief with actions.",
		MaxRounds:         maxRounds,
		ThinkingBudget:    30000,
		MaxOutputTokens:   8000,
	}
	result, runErr := e.loop.Run(ctx, clientID, eventbus.KindCascade, req)
	if runErr != nil {
		return e.transportError(eventbus.KindCascade, clientID, runErr)
	}

	brief, actions := parseCascadeActions(result.FinalText)
	out := CascadeOutput{
		Brief:           brief,
		Actions:         actions,
		Rounds:          result.Rounds,
		ToolInvocations: result.ToolInvocations,
		Truncated:       result.Truncated,
	}
	if actions == nil {
		metrics.ParseFailureTotal.WithLabelValues("cascade").Inc()
	}

	return e.complete(eventbus.KindCascade, clientID, domain.AnalysisCascade, domain.ScopeFullCaseload, out)
}

// parseCascadeActions splits the model's final response on the "ACTIONS:"
// marker and parses the trailing JSON array; the brief is always
// delivered verbatim even when the actions array fails to parse (spec §7
// ParseError).
func parseCascadeActions(text string) (brief string, actions []CascadeAction) {
	const marker = "ACTIONS:"
	idx := indexOfMarker(text, marker)
	if idx == -1 {
		return text, nil
	}

	brief = text[:idx]
	tail := text[idx+len(marker):]

	var parsed []CascadeAction
	if err := parseJSONArray(tail, &parsed); err != nil {
		return brief, nil
	}
	return brief, parsed
}

func indexOfMarker(text, marker string) int {
	return strings.Index(text, marker)
}

// parseJSONArray unmarshals raw into v, first trying the whole string and
// then, if that fails, the substring between the first '[' and the last
// ']' — mirrors parseJSONObject's tolerance for prose-wrapped output.
func parseJSONArray(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON array found in response")
	}
	return json.Unmarshal([]byte(trimmed[start:end+1]), v)
}
