package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/internal/repositories"
)

type SubscriptionServiceInterface interface {
	// Get returns nil, nil when the tenant never paid.
	Get(ctx context.Context, tenantID string) (*db_models.Subscription, error)
	// IsActive re-reads the store on every call.
	IsActive(ctx context.Context, tenantID string) (bool, error)
	Record(ctx context.Context, ev NormalizedEvent) error
}

// NormalizedEvent is what a payment provider adapter reports once it trusts
// the provider's answer.
type NormalizedEvent struct {
	TenantID string
	Provider db_models.Provider
	Status   db_models.SubscriptionStatus
	Email    string
	PlanID   string
}

type SubscriptionService struct {
	subRepo repositories.SubscriptionRepository
	log     *zap.Logger
}

func NewSubscriptionService(subRepo repositories.SubscriptionRepository, log *zap.Logger) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, log: log}
}

func (s *SubscriptionService) Get(ctx context.Context, tenantID string) (*db_models.Subscription, error) {
	return s.subRepo.FindByTenantID(ctx, tenantID)
}

func (s *SubscriptionService) IsActive(ctx context.Context, tenantID string) (bool, error) {
	sub, err := s.subRepo.FindByTenantID(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return sub.IsActive(), nil
}

func (s *SubscriptionService) Record(ctx context.Context, ev NormalizedEvent) error {
	if strings.TrimSpace(ev.TenantID) == "" {
		s.log.Warn("subscription event without tenant ignored",
			zap.String("provider", string(ev.Provider)),
			zap.String("status", string(ev.Status)))
		return nil
	}

	if err := s.subRepo.Upsert(ctx, ev.TenantID, ev.Provider, ev.Status, ev.Email, ev.PlanID); err != nil {
		return err
	}

	s.log.Info("subscription recorded",
		zap.String("tenant", ev.TenantID),
		zap.String("provider", string(ev.Provider)),
		zap.String("status", string(ev.Status)))
	return nil
}
