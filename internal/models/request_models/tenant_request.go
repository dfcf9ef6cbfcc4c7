package request_models

// SavePreferencesRequest is bound from the signup form and from
// POST /api/tenants. Optional fields left nil are not overwritten.
type SavePreferencesRequest struct {
	TenantID     string  `json:"tenant" form:"tenant"`
	Name         string  `json:"name" form:"name"`
	Email        string  `json:"email" form:"email"`
	Role         *string `json:"role" form:"role"`
	Color        *string `json:"color" form:"color"`
	AvatarURL    *string `json:"avatar" form:"avatar"`
	PromptCustom *string `json:"prompt_custom" form:"prompt_custom"`
	Welcome      *string `json:"welcome" form:"welcome"`
}

type LeadRequest struct {
	TenantID string `json:"tenant" form:"tenant"`
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Need     string `json:"need" form:"need"`
}
