package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/internal/models/request_models"
	"bettybots/internal/repositories"
	"bettybots/pkg/metrics"
	"bettybots/pkg/utils"
)

type LeadServiceInterface interface {
	Capture(ctx context.Context, req request_models.LeadRequest, ip, userAgent string) error
}

type LeadService struct {
	tenantRepo repositories.TenantRepository
	mail       IMailService
	log        *zap.Logger
}

func NewLeadService(tenantRepo repositories.TenantRepository, mail IMailService, log *zap.Logger) *LeadService {
	return &LeadService{
		tenantRepo: tenantRepo,
		mail:       mail,
		log:        log,
	}
}

type leadInput struct {
	Name  string `validate:"required,max=200"`
	Email string `validate:"required,email,max=254"`
	Need  string `validate:"required,max=4000"`
}

var leadReasons = map[string]string{
	"Name":  "missing-name",
	"Email": "invalid-email",
	"Need":  "missing-need",
}

func (s *LeadService) Capture(ctx context.Context, req request_models.LeadRequest, ip, userAgent string) error {
	in := leadInput{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Need:  strings.TrimSpace(req.Need),
	}
	if err := validateInput(in, leadReasons); err != nil {
		return err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return utils.ErrTenantNotFound
	}

	lead := &db_models.Lead{
		TenantID:  tenant.TenantID,
		Name:      in.Name,
		Email:     in.Email,
		Need:      in.Need,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: utils.NowUnixSeconds(),
	}
	if err := s.tenantRepo.AppendLead(ctx, lead); err != nil {
		return err
	}
	metrics.IncrementLeads()

	s.log.Info("lead captured",
		zap.String("tenant", tenant.TenantID),
		zap.String("lead_id", lead.ID.String()))

	s.mail.SendLeadNotification(tenant, lead)
	return nil
}
