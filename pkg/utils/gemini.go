package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiChatClient implements ChatCompleter using Google's Gemini models
type GeminiChatClient struct {
	client *genai.Client
	model  string
}

func NewGeminiChatClient(ctx context.Context, apiKey, model string) (*GeminiChatClient, error) {
	if model == "" {
		model = "gemini-1.5-flash" // Free tier model
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiChatClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiChatClient) Provider() string { return "gemini" }

func (c *GeminiChatClient) Complete(ctx context.Context, system string, history []ChatMessage, message string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	m.SetTemperature(0.4)
	m.SetMaxOutputTokens(350)

	cs := m.StartChat()
	cs.History = geminiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: no content")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	reply := strings.TrimSpace(b.String())
	if reply == "" {
		return "", errors.New("gemini: empty reply")
	}
	return reply, nil
}

// geminiHistory maps prior turns onto Gemini roles, where the assistant is "model".
func geminiHistory(history []ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return out
}

func (c *GeminiChatClient) Close() error {
	return c.client.Close()
}
