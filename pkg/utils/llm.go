package utils

import "context"

// ChatMessage is one prior turn of a conversation. Role is "user" or
// "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatCompleter produces the assistant's next reply.
type ChatCompleter interface {
	Complete(ctx context.Context, system string, history []ChatMessage, message string) (string, error)
	Provider() string
}
