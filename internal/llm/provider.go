// Package llm drives a single LLM call: opening a streaming request,
// forwarding thinking/response deltas to callers, and reporting
// authoritative token usage (spec §4.4, Streaming Runner / C4).
//
// The conversation is represented as an ordered sequence of typed
// segments rather than provider-specific wire messages (spec §9 Design
// Notes, "Agentic loop with interleaved thinking"): the Tool Loop appends
// segments and resubmits; only the Provider implementation knows how to
// serialize them to the wire format of a specific gateway.
package llm

import "context"

type SegmentKind string

const (
	SegUserText          SegmentKind = "user_text"
	SegAssistantText     SegmentKind = "assistant_text"
	SegAssistantThinking SegmentKind = "assistant_thinking"
	SegToolRequest       SegmentKind = "tool_request"
	SegToolResult        SegmentKind = "tool_result"
)

type Segment struct {
	Kind          SegmentKind
	Text          string
	ToolID        string
	ToolName      string
	ToolInput     map[string]any
	ToolResult    string
	ToolResultErr bool

	// MediaDataURI attaches an image (data:<mime>;base64,<payload>) to a
	// SegUserText segment for a multimodal evidence-analysis call. Empty
	// for every other use of Segment.
	MediaDataURI string
}

// ToolSpec is the provider-facing shape of one Tool Registry entry
// (spec §4.3); internal/tools.Registry converts its own specs to this.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema
}

type ToolCallRequest struct {
	ID    string
	Name  string
	Input map[string]any
}

type StreamRequest struct {
	SystemPrompt    string
	Segments        []Segment
	Tools           []ToolSpec
	ThinkingBudget  int
	MaxOutputTokens int
}

// Usage carries authoritative, SDK-reported token counts for one call.
type Usage struct {
	InputTokens    int
	OutputTokens   int
	ThinkingTokens int
}

// StreamChunk is one unit of incremental provider output. Exactly one of
// ThinkingDelta/ResponseDelta/ToolCalls/Err is meaningful per chunk; Done
// chunks carry the authoritative Usage and Truncated flag.
type StreamChunk struct {
	ThinkingDelta string
	ResponseDelta string
	ToolCalls     []ToolCallRequest
	Done          bool
	Truncated     bool
	Usage         Usage
	Err           error
}

// Provider is implemented once per LLM transport. Stream must close the
// returned channel after emitting a Done (or Err) chunk, and must stop
// producing chunks promptly once ctx is cancelled.
type Provider interface {
	Stream(ctx context.Context, req StreamRequest) (<-chan StreamChunk, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
