package request_models

type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type ChatRequest struct {
	TenantID string     `json:"tenant"`
	Message  string     `json:"message"`
	History  []ChatTurn `json:"history"`
}
