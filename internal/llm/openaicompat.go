package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/pkg/circuitbreaker"
	"github.com/eliBenven/case-nexus/pkg/logger"
	"github.com/eliBenven/case-nexus/pkg/retry"
)

// OpenAICompat reaches the long-context model over an OpenAI-compatible
// streaming gateway. Embeddings and any non-streaming need go through
// sashabaranov/go-openai directly; the interleaved thinking+response
// stream is read as raw server-sent events because the reasoning delta
// channel such gateways expose isn't part of that library's stream
// decoder.
type OpenAICompat struct {
	sdk            *openai.Client
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	model          string
	embeddingModel string
	temperature    float32
	cb             *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func NewOpenAICompat(baseURL, apiKey, model, embeddingModel string, temperature float32) *OpenAICompat {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM provider initialized", zap.String("model", model), zap.String("base_url", baseURL))

	return &OpenAICompat{
		sdk:            openai.NewClientWithConfig(cfg),
		httpClient:     &http.Client{Timeout: 0}, // streaming; per-request deadline via ctx
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		apiKey:         apiKey,
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		cb:             cb,
		retryConfig:    retryConfig,
	}
}

func (p *OpenAICompat) Embed(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32

	err := p.cb.Execute(ctx, func() error {
		return retry.Do(ctx, p.retryConfig, func() error {
			resp, err := p.sdk.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Input: []string{text},
				Model: openai.EmbeddingModel(p.embeddingModel),
			})
			if err != nil {
				return fmt.Errorf("create embedding: %w", err)
			}
			embedding = make([]float32, len(resp.Data[0].Embedding))
			copy(embedding, resp.Data[0].Embedding)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return embedding, nil
}

type wireMessage struct {
	Role       string          `json:"role"`
	Content    string          `json:"content,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall  `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type wireRequest struct {
	Model          string         `json:"model"`
	Messages       []wireMessage  `json:"messages"`
	Tools          []wireTool     `json:"tools,omitempty"`
	Temperature    float32        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Stream         bool           `json:"stream"`
	StreamOptions  map[string]any `json:"stream_options,omitempty"`
}

type wireDelta struct {
	Content          string         `json:"content"`
	ReasoningContent string         `json:"reasoning_content"`
	ToolCalls        []wireToolCall `json:"tool_calls"`
}

type wireChunk struct {
	Choices []struct {
		Delta        wireDelta `json:"delta"`
		FinishReason *string   `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		// Gateways that surface a distinct reasoning-token count do so
		// here; absence just means the thinking tally stays at zero.
		CompletionTokensDetails *struct {
			ReasoningTokens int `json:"reasoning_tokens"`
		} `json:"completion_tokens_details"`
	} `json:"usage"`
}

func segmentsToMessages(systemPrompt string, segments []Segment) []wireMessage {
	messages := []wireMessage{{Role: "system", Content: systemPrompt}}

	for _, s := range segments {
		switch s.Kind {
		case SegUserText:
			messages = append(messages, wireMessage{Role: "user", Content: s.Text})
		case SegAssistantText, SegAssistantThinking:
			messages = append(messages, wireMessage{Role: "assistant", Content: s.Text})
		case SegToolRequest:
			args, _ := json.Marshal(s.ToolInput)
			tc := wireToolCall{ID: s.ToolID, Type: "function"}
			tc.Function.Name = s.ToolName
			tc.Function.Arguments = string(args)
			messages = append(messages, wireMessage{Role: "assistant", ToolCalls: []wireToolCall{tc}})
		case SegToolResult:
			messages = append(messages, wireMessage{Role: "tool", Content: s.ToolResult, ToolCallID: s.ToolID})
		}
	}

	return messages
}

func toolsToWire(specs []ToolSpec) []wireTool {
	if len(specs) == 0 {
		return nil
	}
	wire := make([]wireTool, len(specs))
	for i, t := range specs {
		wire[i].Type = "function"
		wire[i].Function.Name = t.Name
		wire[i].Function.Description = t.Description
		wire[i].Function.Parameters = t.Parameters
	}
	return wire
}

func (p *OpenAICompat) Stream(ctx context.Context, req StreamRequest) (<-chan StreamChunk, error) {
	body := wireRequest{
		Model:         p.model,
		Messages:      segmentsToMessages(req.SystemPrompt, req.Segments),
		Tools:         toolsToWire(req.Tools),
		Temperature:   p.temperature,
		MaxTokens:     req.MaxOutputTokens,
		Stream:        true,
		StreamOptions: map[string]any{"include_usage": true},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal stream request: %w", err)
	}

	var resp *http.Response
	err = p.cb.Execute(ctx, func() error {
		return retry.Do(ctx, p.retryConfig, func() error {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("build stream request: %w", err)
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
			httpReq.Header.Set("Accept", "text/event-stream")

			r, err := p.httpClient.Do(httpReq)
			if err != nil {
				return fmt.Errorf("open stream: %w", err)
			}
			if r.StatusCode != http.StatusOK {
				r.Body.Close()
				return fmt.Errorf("stream returned status %d", r.StatusCode)
			}
			resp = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	out := make(chan StreamChunk, 16)
	go p.readSSE(ctx, resp, out)
	return out, nil
}

func (p *OpenAICompat) readSSE(ctx context.Context, resp *http.Response, out chan<- StreamChunk) {
	defer close(out)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var usage Usage
	var truncated bool

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			out <- StreamChunk{Done: true, Truncated: truncated, Usage: usage}
			return
		}

		var chunk wireChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			logger.Warn("failed to decode stream chunk", zap.Error(err))
			continue
		}

		if chunk.Usage != nil {
			usage.InputTokens = chunk.Usage.PromptTokens
			usage.OutputTokens = chunk.Usage.CompletionTokens
			if chunk.Usage.CompletionTokensDetails != nil {
				usage.ThinkingTokens = chunk.Usage.CompletionTokensDetails.ReasoningTokens
			}
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.FinishReason != nil && *choice.FinishReason == "length" {
			truncated = true
		}

		if choice.Delta.ReasoningContent != "" {
			out <- StreamChunk{ThinkingDelta: choice.Delta.ReasoningContent}
		}
		if choice.Delta.Content != "" {
			out <- StreamChunk{ResponseDelta: choice.Delta.Content}
		}
		if len(choice.Delta.ToolCalls) > 0 {
			calls := make([]ToolCallRequest, 0, len(choice.Delta.ToolCalls))
			for _, tc := range choice.Delta.ToolCalls {
				var input map[string]any
				_ = json.Unmarshal([]byte(tc.Function.Arguments), &input)
				calls = append(calls, ToolCallRequest{ID: tc.ID, Name: tc.Function.Name, Input: input})
			}
			out <- StreamChunk{ToolCalls: calls}
		}
	}

	if err := scanner.Err(); err != nil {
		out <- StreamChunk{Err: fmt.Errorf("stream read error: %w", err)}
		return
	}
	out <- StreamChunk{Done: true, Truncated: truncated, Usage: usage}
}
