package request_models

type StripeCheckoutRequest struct {
	TenantID string `json:"tenant"`
}

type PayPalVerifyRequest struct {
	TenantID       string `json:"tenant"`
	SubscriptionID string `json:"subscriptionID"`
}
