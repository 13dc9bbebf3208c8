package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctxbuilder "github.com/eliBenven/case-nexus/internal/context"
	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/tokens"
	"github.com/eliBenven/case-nexus/internal/tools"
)

// scriptedProvider replays a fixed sequence of llm.StreamChunk batches,
// one batch per Stream call, so a Tool Loop round can be driven
// deterministically without a real LLM (spec testable scenario S3).
type scriptedProvider struct {
	calls   [][]llm.StreamChunk
	callIdx int
}

func (p *scriptedProvider) Stream(ctx context.Context, req llm.StreamRequest) (<-chan llm.StreamChunk, error) {
	batch := p.calls[p.callIdx]
	p.callIdx++

	ch := make(chan llm.StreamChunk, len(batch))
	for _, c := range batch {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (p *scriptedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func newTestLoop(t *testing.T, provider llm.Provider) (*Loop, *eventbus.Bus) {
	t.Helper()
	store, err := corpus.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.InsertCase(&domain.Case{
		CaseNumber: "CR-12", Defendant: "Doe", Severity: domain.SeverityMisdemeanor, Status: "open",
	}))

	builder := ctxbuilder.NewBuilder(store, insight.New(store.DB()), nil, nil)
	registry := tools.NewRegistry(store, builder, insight.New(store.DB()), nil, nil)

	bus := eventbus.NewBus()
	acct := tokens.NewAccountant(bus)
	runner := llm.NewRunner(provider, bus, acct)
	return NewLoop(runner, registry, bus), bus
}

func TestToolLoopSequentialToolCallsThenStop(t *testing.T) {
	provider := &scriptedProvider{calls: [][]llm.StreamChunk{
		{
			{ThinkingDelta: "checking the case"},
			{ToolCalls: []llm.ToolCallRequest{{ID: "t1", Name: tools.GetCase, Input: map[string]any{"case_number": "CR-12"}}}, Done: true},
		},
		{
			{ToolCalls: []llm.ToolCallRequest{{ID: "t2", Name: tools.GetLegalContext, Input: map[string]any{"topics": []interface{}{"DUI"}}}}, Done: true},
		},
		{
			{ResponseDelta: "Here is my summary."},
			{Done: true},
		},
	}}

	loop, bus := newTestLoop(t, provider)
	ch, unregister := bus.Register("client-1")
	defer unregister()

	req := Request{
		SystemPrompt:      "investigate",
		InitialUserPrompt: "go",
		MaxRounds:         8,
		ThinkingBudget:    1000,
		MaxOutputTokens:   1000,
	}
	result, err := loop.Run(context.Background(), "client-1", eventbus.KindCascade, req)
	require.NoError(t, err)

	require.Len(t, result.ToolInvocations, 2)
	assert.Equal(t, tools.GetCase, result.ToolInvocations[0].ToolName)
	assert.Equal(t, tools.GetLegalContext, result.ToolInvocations[1].ToolName)
	assert.Equal(t, "Here is my summary.", result.FinalText)

	var types []string
	for i := 0; i < 15; i++ {
		types = append(types, (<-ch).Type)
	}
	assert.Equal(t, []string{
		"cascade_thinking_started",
		"cascade_thinking_delta",
		"cascade_thinking_complete",
		"token_update",
		"cascade_tool_call",
		"cascade_tool_call",
		"cascade_tool_result",
		"token_update",
		"cascade_tool_call",
		"cascade_tool_call",
		"cascade_tool_result",
		"cascade_response_started",
		"cascade_response_delta",
		"cascade_response_complete",
		"token_update",
	}, types)
}

func TestToolLoopForcesTerminalRoundAtMaxRounds(t *testing.T) {
	// The model keeps requesting tools forever; the loop must force a
	// no-tools final round rather than exceed MaxRounds (spec open
	// question 2's deterministic resolution).
	alwaysAskForTool := []llm.StreamChunk{
		{ToolCalls: []llm.ToolCallRequest{{ID: "tX", Name: tools.GetCase, Input: map[string]any{"case_number": "CR-12"}}}, Done: true},
	}
	finalSummary := []llm.StreamChunk{
		{ResponseDelta: "forced summary"},
		{Done: true},
	}

	provider := &scriptedProvider{calls: [][]llm.StreamChunk{
		alwaysAskForTool, alwaysAskForTool, finalSummary,
	}}

	loop, _ := newTestLoop(t, provider)
	req := Request{
		SystemPrompt:      "investigate",
		InitialUserPrompt: "go",
		MaxRounds:         3,
		ThinkingBudget:    1000,
		MaxOutputTokens:   1000,
	}
	result, err := loop.Run(context.Background(), "client-1", eventbus.KindCascade, req)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rounds)
	assert.Equal(t, "forced summary", result.FinalText)
	assert.Len(t, result.ToolInvocations, 2)
}

func TestToolLoopUnknownToolDoesNotFailLoop(t *testing.T) {
	provider := &scriptedProvider{calls: [][]llm.StreamChunk{
		{
			{ToolCalls: []llm.ToolCallRequest{{ID: "t1", Name: "not_a_real_tool", Input: map[string]any{}}}, Done: true},
		},
		{
			{ResponseDelta: "recovered"},
			{Done: true},
		},
	}}

	loop, _ := newTestLoop(t, provider)
	req := Request{SystemPrompt: "s", InitialUserPrompt: "go", MaxRounds: 5}
	result, err := loop.Run(context.Background(), "client-1", eventbus.KindCascade, req)
	require.NoError(t, err)

	require.Len(t, result.ToolInvocations, 1)
	assert.Contains(t, result.ToolInvocations[0].ResultPreview, "unknown_tool")
	assert.Equal(t, "recovered", result.FinalText)
}
