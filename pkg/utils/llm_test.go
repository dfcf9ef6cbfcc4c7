package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOpenAI(t *testing.T, reply string, captured *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		choices := []map[string]any{}
		if reply != "" {
			choices = append(choices, map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   captured.Model,
			"choices": choices,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIChatClientAssemblesConversation(t *testing.T) {
	var captured openai.ChatCompletionRequest
	srv := fakeOpenAI(t, "  Bien sûr, à demain.  ", &captured)

	client := NewOpenAIChatClient("sk-test", "", srv.URL+"/v1")
	reply, err := client.Complete(context.Background(), "Tu es Betty.", []ChatMessage{
		{Role: "user", Content: "Bonjour"},
		{Role: "assistant", Content: "Bonjour !"},
	}, "Un rendez-vous demain ?")
	require.NoError(t, err)
	assert.Equal(t, "Bien sûr, à demain.", reply)
	assert.Equal(t, "openai", client.Provider())

	assert.Equal(t, openai.GPT4oMini, captured.Model)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Equal(t, "Tu es Betty.", captured.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, captured.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, captured.Messages[2].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, captured.Messages[3].Role)
	assert.Equal(t, "Un rendez-vous demain ?", captured.Messages[3].Content)
}

func TestOpenAIChatClientNoChoices(t *testing.T) {
	var captured openai.ChatCompletionRequest
	srv := fakeOpenAI(t, "", &captured)

	client := NewOpenAIChatClient("sk-test", "gpt-4o", srv.URL+"/v1")
	_, err := client.Complete(context.Background(), "system", nil, "hello")
	assert.ErrorContains(t, err, "no choices")
	assert.Equal(t, "gpt-4o", captured.Model)
}

func TestGeminiHistoryRoles(t *testing.T) {
	history := geminiHistory([]ChatMessage{
		{Role: "user", Content: "Bonjour"},
		{Role: "assistant", Content: "Bonjour !"},
	})

	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("Bonjour !")}, history[1].Parts)
}
