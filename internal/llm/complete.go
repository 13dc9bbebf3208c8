package llm

import (
	"context"
	"fmt"
)

// Complete runs one short, thinking-disabled, tool-free call through p
// and returns only the accumulated response text. It is a plain utility
// call, not a Streaming Runner run: it is not wired through the Event Bus
// or the Token Accountant. Mirrors the teacher's llmClient.Complete as
// used by internal/search/web's query-optimization pass; internal/caselaw
// uses it the same way.
func Complete(ctx context.Context, p Provider, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	ch, err := p.Stream(ctx, StreamRequest{
		SystemPrompt:    systemPrompt,
		Segments:        []Segment{{Kind: SegUserText, Text: userPrompt}},
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("complete: open stream: %w", err)
	}

	var out string
	for chunk := range ch {
		if chunk.Err != nil {
			return "", fmt.Errorf("complete: stream error: %w", chunk.Err)
		}
		out += chunk.ResponseDelta
		if chunk.Done {
			break
		}
	}
	return out, nil
}
