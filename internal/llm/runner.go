package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/tokens"
	"github.com/eliBenven/case-nexus/pkg/logger"
)

// Runner drives one LLM call end to end: opens a stream, forwards
// thinking/response deltas onto the Event Bus under a namespace, and
// updates the Token Accountant with the authoritative completion usage
// (spec §4.4).
type Runner struct {
	provider Provider
	bus      *eventbus.Bus
	acct     *tokens.Accountant
}

func NewRunner(provider Provider, bus *eventbus.Bus, acct *tokens.Accountant) *Runner {
	return &Runner{provider: provider, bus: bus, acct: acct}
}

// Result is the accumulated outcome of one Streaming Runner call: the
// full thinking and response text, any tool calls the model requested in
// this turn, and whether the completion was truncated.
type Result struct {
	ThinkingText string
	ResponseText string
	ToolCalls    []ToolCallRequest
	Truncated    bool
	Usage        Usage
}

// Run executes req, streaming <ns>_thinking_* / <ns>_response_* frames to
// clientID, and returns the accumulated Result. On a transport error it
// emits <ns>_error and returns the error; callers are responsible for
// releasing the Request Gate and skipping the Token Accountant update (the
// Runner itself never updates the Accountant on error).
func (r *Runner) Run(ctx context.Context, clientID string, ns eventbus.Kind, req StreamRequest) (*Result, error) {
	ch, err := r.provider.Stream(ctx, req)
	if err != nil {
		r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixError), map[string]string{"message": err.Error()})
		return nil, fmt.Errorf("open stream: %w", err)
	}

	res := &Result{}
	thinkingStarted := false
	responseStarted := false

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				return res, nil
			}

			if chunk.Err != nil {
				r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixError), map[string]string{"message": chunk.Err.Error()})
				return nil, fmt.Errorf("stream error: %w", chunk.Err)
			}

			if chunk.ThinkingDelta != "" {
				if !thinkingStarted {
					r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixThinkingStarted), nil)
					thinkingStarted = true
				}
				res.ThinkingText += chunk.ThinkingDelta
				r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixThinkingDelta), map[string]string{"text": chunk.ThinkingDelta})
			}

			if chunk.ResponseDelta != "" {
				if thinkingStarted {
					r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixThinkingComplete), nil)
					thinkingStarted = false
				}
				if !responseStarted {
					r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixResponseStarted), nil)
					responseStarted = true
				}
				res.ResponseText += chunk.ResponseDelta
				r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixResponseDelta), map[string]string{"text": chunk.ResponseDelta})
			}

			if len(chunk.ToolCalls) > 0 {
				res.ToolCalls = append(res.ToolCalls, chunk.ToolCalls...)
			}

			if chunk.Done {
				if thinkingStarted {
					r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixThinkingComplete), nil)
				}
				if responseStarted {
					r.bus.Publish(clientID, eventbus.Name(ns, eventbus.SuffixResponseComplete), map[string]any{
						"full_text": res.ResponseText,
						"truncated": chunk.Truncated,
					})
				}

				res.Truncated = chunk.Truncated
				res.Usage = chunk.Usage

				snap := r.acct.Add(tokens.Delta{
					Input:    int64(chunk.Usage.InputTokens),
					Output:   int64(chunk.Usage.OutputTokens),
					Thinking: int64(chunk.Usage.ThinkingTokens),
				})

				logger.Debug("streaming runner call complete",
					zap.String("client_id", clientID),
					zap.Int64("total_input", snap.TotalInput),
					zap.Int64("total_output", snap.TotalOutput),
					zap.Bool("truncated", chunk.Truncated),
				)

				return res, nil
			}
		}
	}
}
