package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bettybots/internal/models/db_models"
	"bettybots/pkg/utils"
)

type SubscriptionRepository interface {
	// Upsert overwrites everything but created_at. A blank tenant id is a no-op.
	Upsert(ctx context.Context, tenantID string, provider db_models.Provider, status db_models.SubscriptionStatus, email, planID string) error
	// FindByTenantID returns nil, nil when no subscription is recorded.
	FindByTenantID(ctx context.Context, tenantID string) (*db_models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, tenantID string, provider db_models.Provider, status db_models.SubscriptionStatus, email, planID string) error {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil
	}
	if !utils.ValidTenantID(tenantID) {
		return utils.ErrInvalidTenantID
	}

	sub := db_models.Subscription{
		TenantID: tenantID,
		Provider: provider,
		Status:   status,
		Email:    email,
		PlanID:   planID,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "status", "email", "plan_id", "updated_at"}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("%w: upsert subscription %s: %w", utils.ErrDatabaseError, tenantID, err)
	}
	return nil
}

func (r *subscriptionRepository) FindByTenantID(ctx context.Context, tenantID string) (*db_models.Subscription, error) {
	tenantID = strings.TrimSpace(tenantID)
	if !utils.ValidTenantID(tenantID) {
		return nil, nil
	}

	var sub db_models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "tenant_id = ?", tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find subscription: %w", utils.ErrDatabaseError, err)
	}
	return &sub, nil
}
