package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/eliBenven/case-nexus/internal/domain"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/llm"
)

const chatSystemPrompt = `You are an analyst assistant embedded in a public defender's caseload review tool. Answer the user's question about their caseload using the full caseload context and conversation history below. Be concise and specific; cite case numbers when relevant.`

// ChatOutput is the persisted record of one chat turn.
type ChatOutput struct {
	Message string `json:"message"`
	Reply   string `json:"reply"`
}

// ChatMessage is workflow §4.6 (6): one turn of the multi-turn caseload
// chat. Turn history is maintained per client in the Corpus Store;
// extended thinking is enabled on every turn.
func (e *Engine) ChatMessage(ctx context.Context, clientID, message string) (err error) {
	defer observe("chat", time.Now(), &err)

	if err = e.acquire(clientID); err != nil {
		return err
	}
	defer e.gate.Release(clientID)

	caseloadCtx, buildErr := e.builder.BuildFullCaseloadContext()
	if buildErr != nil {
		return e.transportError(eventbus.KindChat, clientID, buildErr)
	}

	history, histErr := e.store.GetChatHistory(clientID)
	if histErr != nil {
		return e.transportError(eventbus.KindChat, clientID, histErr)
	}

	var prompt string
	prompt = caseloadCtx + "\n\n## Conversation So Far\n\n"
	for _, turn := range history {
		prompt += fmt.Sprintf("**%s**: %s\n\n", turn.Role, turn.Text)
	}
	prompt += fmt.Sprintf("**user**: %s\n", message)

	req := llm.StreamRequest{
		SystemPrompt:    chatSystemPrompt,
		Segments:        []llm.Segment{{Kind: llm.SegUserText, Text: prompt}},
		ThinkingBudget:  20000,
		MaxOutputTokens: 8000,
	}
	result, runErr := e.runner.Run(ctx, clientID, eventbus.KindChat, req)
	if runErr != nil {
		return e.transportError(eventbus.KindChat, clientID, runErr)
	}

	if appendErr := e.store.AppendChatTurn(clientID, domain.ChatTurn{Role: "user", Text: message}); appendErr != nil {
		return e.transportError(eventbus.KindChat, clientID, appendErr)
	}
	if appendErr := e.store.AppendChatTurn(clientID, domain.ChatTurn{Role: "assistant", Text: result.ResponseText}); appendErr != nil {
		return e.transportError(eventbus.KindChat, clientID, appendErr)
	}

	out := ChatOutput{Message: message, Reply: result.ResponseText}
	return e.complete(eventbus.KindChat, clientID, domain.AnalysisChat, domain.ScopeFullCaseload, out)
}

// ClearChat resets clientID's chat history without touching the Insight
// Log or emitting an analysis result (it is not itself an analysis).
func (e *Engine) ClearChat(clientID string) error {
	return e.store.ClearChatHistory(clientID)
}
