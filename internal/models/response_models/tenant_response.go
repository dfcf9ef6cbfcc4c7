package response_models

type TenantResponse struct {
	TenantID     string                `json:"tenant_id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Role         string                `json:"role"`
	Color        string                `json:"color"`
	AvatarURL    string                `json:"avatar_url"`
	PromptCustom string                `json:"prompt_custom"`
	Welcome      string                `json:"welcome"`
	RecentLeads  int                   `json:"recent_leads"`
	Active       bool                  `json:"active"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	EmbedSnippet string                `json:"embed_snippet,omitempty"`
}

type SubscriptionResponse struct {
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	Email     string `json:"email"`
	PlanID    string `json:"plan_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type HealthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}
