package tools

import (
	"context"
	"fmt"
)

func init() {
	registerTool(toolDef{
		name:        SearchCaseLaw,
		description: "Search case law for relevant precedent via a grounded web search, optionally narrowed to a court.",
		fields: []field{
			{name: "query", jsonType: "string", required: true},
			{name: "court", jsonType: "string"},
		},
		fn: searchCaseLaw,
	})
	registerTool(toolDef{
		name:        VerifyCitations,
		description: "Verify a list of legal citations against the local legal corpus and, for unmatched ones, a grounded case-law search.",
		fields:      []field{{name: "citations", jsonType: "array_string", required: true}},
		fn:          verifyCitations,
	})
	registerTool(toolDef{
		name:        SearchPrecedentsForCharges,
		description: "Find precedents relevant to a list of charges, ranked by relevance.",
		fields:      []field{{name: "charges", jsonType: "array_string", required: true}},
		fn:          searchPrecedentsForCharges,
	})
}

func searchCaseLaw(ctx context.Context, r *Registry, input map[string]any) any {
	if r.search == nil {
		return map[string]any{"error": "tool_error", "message": "case-law search provider not configured"}
	}
	query, _ := stringField(input, "query")
	court, _ := stringField(input, "court")

	results, err := r.search.Search(ctx, query, court)
	if err != nil {
		return map[string]any{"error": "tool_error", "message": err.Error()}
	}
	return map[string]any{"results": results}
}

func verifyCitations(ctx context.Context, r *Registry, input map[string]any) any {
	if r.verifier == nil {
		return map[string]any{"error": "tool_error", "message": "citation verifier not configured"}
	}
	citations := stringSliceField(input, "citations")

	res, degraded := r.verifier.Verify(ctx, citations)
	if degraded != nil {
		return map[string]any{"error": degraded.Error, "local_citations": degraded.LocalCitations, "verified": res.Verified, "not_found": res.NotFound, "ambiguous": res.Ambiguous}
	}
	return map[string]any{"verified": res.Verified, "not_found": res.NotFound, "ambiguous": res.Ambiguous}
}

// searchPrecedentsForCharges runs one grounded search per charge and
// merges the hits, deduplicating by citation and preserving the order
// charges were searched (the closest available proxy for "ranked by
// relevance" without a second scoring call).
func searchPrecedentsForCharges(ctx context.Context, r *Registry, input map[string]any) any {
	if r.search == nil {
		return map[string]any{"error": "tool_error", "message": "case-law search provider not configured"}
	}
	charges := stringSliceField(input, "charges")

	seen := make(map[string]bool)
	var merged []any
	for _, charge := range charges {
		hits, err := r.search.Search(ctx, fmt.Sprintf("precedent case law for %s charge", charge), "")
		if err != nil {
			continue
		}
		for _, h := range hits {
			key := h.Citation
			if key == "" {
				key = h.URL
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, h)
		}
	}
	return map[string]any{"precedents": merged}
}
