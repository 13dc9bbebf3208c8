package tools

import "context"

// legalContextTokenCapKB mirrors context.Builder's LEGAL_CONTEXT_TOKEN_CAP
// default (spec §4.2); the Tool Registry has no separate workflow-level
// knob to thread through, so it reuses the spec's ≈30K token figure
// directly (120KB at ~4 chars/token).
const legalContextTokenCapKB = 120

func init() {
	registerTool(toolDef{
		name:        GetLegalContext,
		description: "Get a compact digest of statutes, amendments, and landmark cases relevant to a list of topics.",
		fields:      []field{{name: "topics", jsonType: "array_string", required: true}},
		fn:          getLegalContext,
	})
}

func getLegalContext(ctx context.Context, r *Registry, input map[string]any) any {
	topics := stringSliceField(input, "topics")
	digest, err := r.builder.BuildLegalContext(ctx, topics, legalContextTokenCapKB)
	if err != nil {
		return map[string]any{"error": "tool_error", "message": err.Error()}
	}
	return map[string]any{"context": digest}
}
