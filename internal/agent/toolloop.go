// Package agent implements the Tool Loop (spec §4.5, C5): a bounded
// multi-round agentic executor built on the Streaming Runner and Tool
// Registry. New; grounded on the teacher's internal/aws/actions.Executor
// ExecuteActions sequential-with-early-stop loop, generalized from a
// fixed action list to model-driven continuation.
package agent

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/metrics"
	"github.com/eliBenven/case-nexus/internal/tools"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

const maxResultPreviewChars = 256

// Request configures one Tool Loop run (spec §4.5).
type Request struct {
	SystemPrompt      string
	InitialUserPrompt string
	ToolNames         []string // empty = every tool in the registry
	MaxRounds         int
	ThinkingBudget    int
	MaxOutputTokens   int
}

// Invocation records one tool round-trip the loop observed (spec's
// ToolInvocation entity, done/error collapsed into the stored result).
type Invocation struct {
	ToolID        string
	ToolName      string
	ToolInput     map[string]any
	ResultPreview string
	ResultLength  int
}

// Result is the accumulated outcome of a full Tool Loop run.
type Result struct {
	FinalText       string
	Rounds          int
	ToolInvocations []Invocation
	Truncated       bool
}

// Loop is the multi-round agentic executor: Streaming Runner calls
// chained across rounds, with the Tool Registry dispatched strictly
// sequentially in between (spec invariant 4).
type Loop struct {
	runner   *llm.Runner
	registry *tools.Registry
	bus      *eventbus.Bus
}

func NewLoop(runner *llm.Runner, registry *tools.Registry, bus *eventbus.Bus) *Loop {
	return &Loop{runner: runner, registry: registry, bus: bus}
}

// Run drives req to completion: at most req.MaxRounds Streaming Runner
// calls. The final allowed round never advertises tools, forcing the
// model to summarize with whatever it has already gathered — the
// deterministic resolution of spec's open question 2. Termination is
// either a tool-request-free response or exhausting MaxRounds.
func (l *Loop) Run(ctx context.Context, clientID string, ns eventbus.Kind, req Request) (*Result, error) {
	maxRounds := req.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 8
	}

	specs := l.registry.Specs(req.ToolNames)
	segments := []llm.Segment{{Kind: llm.SegUserText, Text: req.InitialUserPrompt}}
	result := &Result{}

	for round := 1; round <= maxRounds; round++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		isFinalRound := round == maxRounds
		streamReq := llm.StreamRequest{
			SystemPrompt:    req.SystemPrompt,
			ThinkingBudget:  req.ThinkingBudget,
			MaxOutputTokens: req.MaxOutputTokens,
		}
		if isFinalRound {
			segments = append(segments, llm.Segment{
				Kind: llm.SegUserText,
				Text: "You have reached the maximum number of tool-use rounds. Summarize your findings now using only the information already gathered; do not request any further tools.",
			})
		} else {
			streamReq.Tools = specs
		}
		streamReq.Segments = segments

		runResult, err := l.runner.Run(ctx, clientID, ns, streamReq)
		if err != nil {
			return nil, err
		}

		result.FinalText = runResult.ResponseText
		result.Truncated = runResult.Truncated
		result.Rounds = round

		if isFinalRound || len(runResult.ToolCalls) == 0 {
			if isFinalRound && len(runResult.ToolCalls) > 0 {
				logger.Warn("tool loop: model still requested tools on forced final round; ignoring",
					zap.String("client_id", clientID))
			}
			metrics.ToolLoopRounds.Observe(float64(result.Rounds))
			return result, nil
		}

		if runResult.ResponseText != "" {
			segments = append(segments, llm.Segment{Kind: llm.SegAssistantText, Text: runResult.ResponseText})
		}

		for _, tc := range runResult.ToolCalls {
			toolID := tc.ID
			if toolID == "" {
				toolID = uuid.NewString()
			}

			l.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixToolCall), map[string]any{
				"tool_id": toolID, "tool_name": tc.Name, "tool_input": tc.Input, "status": "calling",
			})
			l.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixToolCall), map[string]any{
				"tool_id": toolID, "tool_name": tc.Name, "tool_input": tc.Input, "status": "executing",
			})

			output := l.registry.Dispatch(ctx, tc.Name, tc.Input)
			raw, _ := json.Marshal(output)
			preview := string(raw)
			if len(preview) > maxResultPreviewChars {
				preview = preview[:maxResultPreviewChars]
			}

			l.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixToolResult), map[string]any{
				"tool_id": toolID, "tool_name": tc.Name, "result_preview": preview, "result_length": len(raw),
			})

			result.ToolInvocations = append(result.ToolInvocations, Invocation{
				ToolID: toolID, ToolName: tc.Name, ToolInput: tc.Input,
				ResultPreview: preview, ResultLength: len(raw),
			})

			segments = append(segments,
				llm.Segment{Kind: llm.SegToolRequest, ToolID: toolID, ToolName: tc.Name, ToolInput: tc.Input},
				llm.Segment{Kind: llm.SegToolResult, ToolID: toolID, ToolResult: string(raw)},
			)
		}
	}

	metrics.ToolLoopRounds.Observe(float64(result.Rounds))
	return result, nil
}
