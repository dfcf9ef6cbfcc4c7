package db_models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps keeps unix-second creation and update times. CreatedAt is only
// ever written on insert.
type Timestamps struct {
	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int64 `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Timestamps) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().Unix()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

// Touch stamps t the way the GORM hooks would. The flat-file store uses it.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt == 0 {
		t.CreatedAt = now.Unix()
	}
	t.UpdatedAt = now.Unix()
}
