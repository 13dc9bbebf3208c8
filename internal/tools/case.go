package tools

import (
	"context"

	"github.com/eliBenven/case-nexus/internal/apperr"
)

func init() {
	registerTool(toolDef{
		name:        GetCase,
		description: "Look up one case's structured record by case number.",
		fields:      []field{{name: "case_number", jsonType: "string", required: true}},
		fn:          getCase,
	})
	registerTool(toolDef{
		name:        GetCaseContext,
		description: "Get the full markdown case-file context for one case, including prior analyses and related alerts/connections.",
		fields:      []field{{name: "case_number", jsonType: "string", required: true}},
		fn:          getCaseContext,
	})
}

func getCase(ctx context.Context, r *Registry, input map[string]any) any {
	cn, _ := stringField(input, "case_number")
	c, err := r.store.GetCase(cn)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return map[string]any{"error": "not_found", "message": err.Error()}
		}
		return map[string]any{"error": "tool_error", "message": err.Error()}
	}
	return c
}

func getCaseContext(ctx context.Context, r *Registry, input map[string]any) any {
	cn, _ := stringField(input, "case_number")
	md, err := r.builder.BuildCaseContext(cn)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return map[string]any{"error": "not_found", "message": err.Error()}
		}
		return map[string]any{"error": "tool_error", "message": err.Error()}
	}
	return map[string]any{"context": md}
}
