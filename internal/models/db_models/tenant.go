package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxRecentLeads bounds Tenant.Leads. Older entries are dropped first.
const MaxRecentLeads = 100

type Tenant struct {
	TenantID     string                         `gorm:"primaryKey;size:60" json:"tenant_id"`
	Name         string                         `json:"name"`
	Email        string                         `gorm:"index" json:"email"`
	Role         string                         `gorm:"size:64" json:"role"`
	Color        string                         `gorm:"size:32" json:"color"`
	AvatarURL    string                         `json:"avatar_url"`
	PromptCustom string                         `gorm:"type:text" json:"prompt_custom"`
	Welcome      string                         `json:"welcome"`
	Leads        datatypes.JSONSlice[LeadEntry] `json:"leads"`
	Timestamps
}

func (Tenant) TableName() string { return "tenants" }

// LeadEntry is the compact form of a lead kept on the tenant record.
type LeadEntry struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Need      string `json:"need"`
	Timestamp int64  `json:"timestamp"`
}

// Lead is one row of the append-only per-tenant lead log.
type Lead struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string    `gorm:"size:60;index" json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Need      string    `gorm:"type:text" json:"need"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt int64     `json:"timestamp"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *Lead) Entry() LeadEntry {
	return LeadEntry{Name: l.Name, Email: l.Email, Need: l.Need, Timestamp: l.CreatedAt}
}

// AppendRecentLead appends e and keeps only the newest MaxRecentLeads entries.
func AppendRecentLead(leads []LeadEntry, e LeadEntry) []LeadEntry {
	leads = append(leads, e)
	if over := len(leads) - MaxRecentLeads; over > 0 {
		leads = append([]LeadEntry(nil), leads[over:]...)
	}
	return leads
}

// TenantPatch carries the fields of an upsert. Nil pointers leave the stored
// value untouched.
type TenantPatch struct {
	Name         *string
	Email        *string
	Role         *string
	Color        *string
	AvatarURL    *string
	PromptCustom *string
	Welcome      *string
}

// Apply copies the present fields of p onto t.
func (p TenantPatch) Apply(t *Tenant) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Email != nil {
		t.Email = *p.Email
	}
	if p.Role != nil {
		t.Role = *p.Role
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.AvatarURL != nil {
		t.AvatarURL = *p.AvatarURL
	}
	if p.PromptCustom != nil {
		t.PromptCustom = *p.PromptCustom
	}
	if p.Welcome != nil {
		t.Welcome = *p.Welcome
	}
}

// Columns returns the present fields keyed by column name, for UPDATE.
func (p TenantPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Role != nil {
		cols["role"] = *p.Role
	}
	if p.Color != nil {
		cols["color"] = *p.Color
	}
	if p.AvatarURL != nil {
		cols["avatar_url"] = *p.AvatarURL
	}
	if p.PromptCustom != nil {
		cols["prompt_custom"] = *p.PromptCustom
	}
	if p.Welcome != nil {
		cols["welcome"] = *p.Welcome
	}
	return cols
}

// TenantDefaults fills fields that a newly created tenant did not supply.
type TenantDefaults struct {
	Role    string
	Color   string
	Welcome string
}

func (d TenantDefaults) Apply(t *Tenant) {
	if t.Role == "" {
		t.Role = d.Role
	}
	if t.Color == "" {
		t.Color = d.Color
	}
	if t.Welcome == "" {
		t.Welcome = d.Welcome
	}
}
