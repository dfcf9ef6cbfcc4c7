package db_models

type SubscriptionStatus string

const (
	SubStatusTrialing SubscriptionStatus = "trialing"
	SubStatusActive   SubscriptionStatus = "active"
	SubStatusPastDue  SubscriptionStatus = "past_due"
	SubStatusCanceled SubscriptionStatus = "canceled"
	SubStatusExpired  SubscriptionStatus = "expired"
)

type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderPayPal Provider = "paypal"
	ProviderManual Provider = "manual"
)

// Subscription is the latest known billing state of a tenant. There is one
// row per tenant and every provider confirmation overwrites it.
type Subscription struct {
	TenantID string             `gorm:"primaryKey;size:60" json:"tenant_id"`
	Provider Provider           `gorm:"size:16;index" json:"provider"`
	Status   SubscriptionStatus `gorm:"size:32;index" json:"status"`
	Email    string             `json:"email"`
	PlanID   string             `json:"plan_id"`
	Timestamps
}

func (Subscription) TableName() string { return "subscriptions" }

// IsActive is the single access predicate: the record exists and its status
// is exactly "active" or "trialing".
func (s *Subscription) IsActive() bool {
	if s == nil {
		return false
	}
	return s.Status == SubStatusActive || s.Status == SubStatusTrialing
}
