package caselaw

import (
	"context"
	"strings"

	"github.com/eliBenven/case-nexus/internal/llm"
)

// llmOptimizer adapts internal/llm.Provider into a QueryOptimizer via
// llm.Complete, mirroring the teacher's optimizeQuery call in
// internal/search/web.Client.
type llmOptimizer struct {
	provider llm.Provider
}

// NewLLMOptimizer wraps provider as a QueryOptimizer for Client.
func NewLLMOptimizer(provider llm.Provider) QueryOptimizer {
	return llmOptimizer{provider: provider}
}

const optimizeSystemPrompt = `You are a search query optimizer for legal case-law research.
Transform the user's query into an effective web search query.

Rules:
1. Add relevant jurisdiction/court keywords when a court is given.
2. Prefer official court-opinion and reporter-indexing sources.
3. Keep it terse: no more than 20 words.

Return ONLY the optimized query, nothing else.`

func (o llmOptimizer) Optimize(ctx context.Context, query, court string) (string, error) {
	userPrompt := "Query: " + query
	if court != "" {
		userPrompt += "\nCourt: " + court
	}
	resp, err := llm.Complete(ctx, o.provider, optimizeSystemPrompt, userPrompt, 100)
	if err != nil {
		return "", err
	}
	optimized := strings.TrimSpace(resp)
	if optimized == "" {
		return query, nil
	}
	return optimized, nil
}
