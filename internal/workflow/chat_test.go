package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageAppendsBothTurnsToHistory(t *testing.T) {
	e, store, _ := newTestEngine(t, "first reply", "second reply")

	require.NoError(t, e.ChatMessage(context.Background(), "client-1", "what's going on with my caseload?"))
	require.NoError(t, e.ChatMessage(context.Background(), "client-1", "and now?"))

	history, err := store.GetChatHistory("client-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "what's going on with my caseload?", history[0].Text)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "first reply", history[1].Text)
	assert.Equal(t, "second reply", history[3].Text)
}

func TestClearChatResetsHistoryWithoutWritingInsight(t *testing.T) {
	e, store, _ := newTestEngine(t, "a reply")
	require.NoError(t, e.ChatMessage(context.Background(), "client-1", "hello"))

	require.NoError(t, e.ClearChat("client-1"))

	history, err := store.GetChatHistory("client-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
