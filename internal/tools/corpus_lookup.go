package tools

import (
	"context"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/insight"
)

func init() {
	registerTool(toolDef{
		name:        GetAlerts,
		description: "List health-check alerts, optionally filtered by case number and/or severity.",
		fields: []field{
			{name: "case_number", jsonType: "string"},
			{name: "severity", jsonType: "string"},
		},
		fn: getAlerts,
	})
	registerTool(toolDef{
		name:        GetConnections,
		description: "List cross-case connections, optionally filtered by case number and/or connection type.",
		fields: []field{
			{name: "case_number", jsonType: "string"},
			{name: "type", jsonType: "string"},
		},
		fn: getConnections,
	})
	registerTool(toolDef{
		name:        GetPriorAnalyses,
		description: "List prior completed analyses (Insights), newest first, optionally filtered by scope/type/limit.",
		fields: []field{
			{name: "scope", jsonType: "string"},
			{name: "type", jsonType: "string"},
			{name: "limit", jsonType: "integer"},
		},
		fn: getPriorAnalyses,
	})
}

func getAlerts(ctx context.Context, r *Registry, input map[string]any) any {
	all, err := r.store.ListAlerts()
	if err != nil {
		return map[string]any{"error": "tool_error", "message": err.Error()}
	}

	caseNumber, _ := stringField(input, "case_number")
	severity, _ := stringField(input, "severity")

	var out []domain.Alert
	for _, a := range all {
		if caseNumber != "" && a.CaseNumber != caseNumber {
			continue
		}
		if severity != "" && string(a.Severity) != severity {
			continue
		}
		out = append(out, a)
	}
	return map[string]any{"alerts": out}
}

func getConnections(ctx context.Context, r *Registry, input map[string]any) any {
	all, err := r.store.ListConnections()
	if err != nil {
		return map[string]any{"error": "tool_error", "message": err.Error()}
	}

	caseNumber, _ := stringField(input, "case_number")
	typ, _ := stringField(input, "type")

	var out []domain.Connection
	for _, c := range all {
		if typ != "" && c.Type != typ {
			continue
		}
		if caseNumber != "" {
			found := false
			for _, cn := range c.CaseNumbers {
				if cn == caseNumber {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, c)
	}
	return map[string]any{"connections": out}
}

func getPriorAnalyses(ctx context.Context, r *Registry, input map[string]any) any {
	scope, _ := stringField(input, "scope")
	typ, _ := stringField(input, "type")
	limit := intField(input, "limit", 0)

	insights, err := r.insights.List(insight.Filter{Scope: scope, AnalysisType: domain.AnalysisType(typ), Limit: limit})
	if err != nil {
		return map[string]any{"error": "tool_error", "message": err.Error()}
	}
	return map[string]any{"insights": insights}
}
