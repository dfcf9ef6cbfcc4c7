package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/internal/models/request_models"
	"bettybots/internal/repositories"
	"bettybots/pkg/config"
	"bettybots/pkg/utils"
)

type preferencesInput struct {
	Name  string `validate:"required,max=200"`
	Email string `validate:"required,email,max=254"`
	Color string `validate:"omitempty,hexcolor"`
}

var preferenceReasons = map[string]string{
	"Name":  "missing-name",
	"Email": "invalid-email",
	"Color": "invalid-color",
}

type TenantServiceInterface interface {
	SavePreferences(ctx context.Context, req request_models.SavePreferencesRequest) (*db_models.Tenant, error)
	// GetTenant returns utils.ErrTenantNotFound for unknown ids.
	GetTenant(ctx context.Context, tenantID string) (*db_models.Tenant, error)
	EmbedSnippet(t *db_models.Tenant) string
}

type TenantService struct {
	tenantRepo repositories.TenantRepository
	cfg        *config.Config
	log        *zap.Logger
	now        func() time.Time
}

func NewTenantService(tenantRepo repositories.TenantRepository, cfg *config.Config, log *zap.Logger) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

func (s *TenantService) SavePreferences(ctx context.Context, req request_models.SavePreferencesRequest) (*db_models.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	in := preferencesInput{Name: name, Email: email}
	if c := nonBlank(req.Color); c != nil {
		in.Color = *c
	}
	if err := validateInput(in, preferenceReasons); err != nil {
		return nil, err
	}

	tenantID := utils.DeriveTenantID(req.TenantID, email, s.now())

	patch := db_models.TenantPatch{
		Name:         &name,
		Email:        &email,
		Role:         nonBlank(req.Role),
		Color:        nonBlank(req.Color),
		AvatarURL:    trimmed(req.AvatarURL),
		PromptCustom: trimmed(req.PromptCustom),
		Welcome:      trimmed(req.Welcome),
	}
	if patch.Role != nil {
		role := PersonaFor(*patch.Role, s.cfg.DefaultRole).Key
		patch.Role = &role
	}

	// A new tenant greets with its persona's welcome unless one was given.
	if patch.Welcome == nil || *patch.Welcome == "" {
		existing, err := s.tenantRepo.FindByID(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			role := s.cfg.DefaultRole
			if patch.Role != nil {
				role = *patch.Role
			}
			welcome := PersonaFor(role, s.cfg.DefaultRole).Welcome
			patch.Welcome = &welcome
		}
	}

	tenant, err := s.tenantRepo.Upsert(ctx, tenantID, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant preferences saved",
		zap.String("tenant", tenant.TenantID),
		zap.String("role", tenant.Role))
	return tenant, nil
}

func (s *TenantService) GetTenant(ctx context.Context, tenantID string) (*db_models.Tenant, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, utils.ErrTenantNotFound
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, utils.ErrTenantNotFound
	}
	return tenant, nil
}

// EmbedSnippet is the <script> tag a tenant pastes into their site.
func (s *TenantService) EmbedSnippet(t *db_models.Tenant) string {
	return fmt.Sprintf(`<script src="%s/static/embed.js" data-base="%s" data-tenant="%s" data-role="%s" data-color="%s" data-avatar="%s" defer></script>`,
		s.cfg.BaseURL,
		s.cfg.BaseURL,
		html.EscapeString(t.TenantID),
		html.EscapeString(t.Role),
		html.EscapeString(t.Color),
		html.EscapeString(t.AvatarURL),
	)
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
