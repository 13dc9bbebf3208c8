package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/metrics"
)

const healthCheckSystemPrompt = `You are a caseload health-check analyst for a public defender's office.
Review the full caseload below and identify:
- alerts: upcoming deadlines, missing evidence, stale cases, bond issues
- connections: patterns across cases worth the defender's attention (beyond shared officers/witnesses/judges, which are detected separately)
- priority_actions: a ranked list of what the defender should do next

Respond with a single JSON object: {"alerts": [...], "connections": [...], "priority_actions": [...]}.
Each alert: {severity: "critical"|"warning"|"info", type, case_number, title, message, details}.
Each connection: {type, confidence (0-1), case_numbers: [...], title, description, suggestion}.
Each priority_action: {case_number, action, urgency: "this_week"|"this_month"|"routine", reason}.`

type healthCheckOutput struct {
	Alerts          []domain.Alert          `json:"alerts"`
	Connections     []domain.Connection     `json:"connections"`
	PriorityActions []domain.PriorityAction `json:"priority_actions"`
}

// RunHealthCheck is workflow §4.6 (1): a caseload-wide structured review,
// augmented with deterministic shared-actor Connection discovery from the
// graph store when a graph client is configured. The graph contains only
// cases written through graph.SyncCase, which loading the caseload does
// not do.
func (e *Engine) RunHealthCheck(ctx context.Context, clientID string) (err error) {
	defer observe("health_check", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	e.emitStatus(clientID, 1, "Gathering caseload")
	caseloadCtx, buildErr := e.builder.BuildFullCaseloadContext()
	if buildErr != nil {
		return e.transportError(eventbus.KindHealthCheck, clientID, buildErr)
	}

	e.emitStatus(clientID, 2, "Scanning for cross-case connections")
	var graphConnections []domain.Connection
	if e.graph != nil {
		groups, gerr := e.graph.SharedActors(ctx)
		if gerr != nil {
			metrics.ConnectionsDiscovered.Set(0)
		} else {
			for _, g := range groups {
				graphConnections = append(graphConnections, domain.Connection{
					ID:          uuid.NewString(),
					Type:        "shared_" + g.ActorRole,
					Confidence:  1.0,
					CaseNumbers: g.CaseNumbers,
					Title:       fmt.Sprintf("Shared %s: %s", g.ActorRole, g.ActorName),
					Description: fmt.Sprintf("%d cases share %s %s", len(g.CaseNumbers), g.ActorRole, g.ActorName),
				})
			}
		}
	}

	e.emitStatus(clientID, 3, "Analyzing caseload with the model")
	req := llm.StreamRequest{
		SystemPrompt:    healthCheckSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: caseloadCtx}},
		ThinkingBudget:  e.cfg.HealthCheckThinkingKTok * 1000,
		MaxOutputTokens: 16000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindHealthCheck, req)
	if runErr != nil {
		return e.transportError(eventbus.KindHealthCheck, clientID, runErr)
	}

	e.emitStatus(clientID, 4, "Drafting alerts and priority actions")

	var out healthCheckOutput
	if parseErr := parseJSONObject(result.ResponseText, &out); parseErr != nil {
		metrics.ParseFailureTotal.WithLabelValues("health_check").Inc()
		payload := parseFailure{ResponseText: result.ResponseText}
		e.emitStatus(clientID, 5, "Done (raw output, not structured)")
		return e.complete(eventbus.KindHealthCheck, clientID, domain.AnalysisHealthCheck, domain.ScopeFullCaseload, payload)
	}

	for _, id := range graphConnections {
		out.Connections = append(out.Connections, id)
	}
	metrics.ConnectionsDiscovered.Set(float64(len(out.Connections)))

	for i := range out.Alerts {
		if out.Alerts[i].ID == "" {
			out.Alerts[i].ID = uuid.NewString()
		}
	}
	for i := range out.Connections {
		if out.Connections[i].ID == "" {
			out.Connections[i].ID = uuid.NewString()
		}
	}
	for i := range out.PriorityActions {
		if out.PriorityActions[i].ID == "" {
			out.PriorityActions[i].ID = uuid.NewString()
		}
	}

	if err := e.store.ReplaceAlerts(out.Alerts); err != nil {
		return e.transportError(eventbus.KindHealthCheck, clientID, fmt.Errorf("replace alerts: %w", err))
	}
	if err := e.store.ReplaceConnections(out.Connections); err != nil {
		return e.transportError(eventbus.KindHealthCheck, clientID, fmt.Errorf("replace connections: %w", err))
	}
	if err := e.store.ReplacePriorityActions(out.PriorityActions); err != nil {
		return e.transportError(eventbus.KindHealthCheck, clientID, fmt.Errorf("replace priority actions: %w", err))
	}

	e.emitStatus(clientID, 5, "Health check complete")
	return e.complete(eventbus.KindHealthCheck, clientID, domain.AnalysisHealthCheck, domain.ScopeFullCaseload, out)
}
