package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/internal/repositories"
	"bettybots/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:             "https://bots.example.com",
		BrandName:           "Betty Bots",
		StripeSecretKey:     "sk_test_123",
		StripePriceID:       "price_monthly",
		StripeWebhookSecret: "whsec_test_123",
		PayPalClientID:      "pp-client",
		PayPalClientSecret:  "pp-secret",
		PayPalPlanID:        "P-PLAN",
		ProviderTimeout:     5 * time.Second,
		DefaultRole:         "psychologue",
		DefaultColor:        "#2563eb",
	}
}

type sentMail struct {
	Kind     string
	To       string
	TenantID string
	Snippet  string
}

type recordingMail struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMail) Send(to, subject, body string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: "generic", To: to})
	return to != ""
}

func (m *recordingMail) SendSubscriptionConfirmation(tenantID, to string, provider db_models.Provider, snippet string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: "subscription:" + string(provider), To: to, TenantID: tenantID, Snippet: snippet})
	return to != ""
}

func (m *recordingMail) SendLeadNotification(tenant *db_models.Tenant, lead *db_models.Lead) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: "lead", To: tenant.Email, TenantID: tenant.TenantID})
	return tenant.Email != ""
}

func (m *recordingMail) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type fixture struct {
	cfg           *config.Config
	tenantRepo    repositories.TenantRepository
	subRepo       repositories.SubscriptionRepository
	tenants       *TenantService
	subscriptions *SubscriptionService
	mail          *recordingMail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testConfig()
	root := t.TempDir()
	defaults := db_models.TenantDefaults{Role: cfg.DefaultRole, Color: cfg.DefaultColor}

	tenantRepo, err := repositories.NewFileTenantRepository(root, defaults)
	require.NoError(t, err)
	subRepo, err := repositories.NewFileSubscriptionRepository(root)
	require.NoError(t, err)

	log := zap.NewNop()
	return &fixture{
		cfg:           cfg,
		tenantRepo:    tenantRepo,
		subRepo:       subRepo,
		tenants:       NewTenantService(tenantRepo, cfg, log),
		subscriptions: NewSubscriptionService(subRepo, log),
		mail:          &recordingMail{},
	}
}

func (f *fixture) seedTenant(t *testing.T, id, email string) *db_models.Tenant {
	t.Helper()
	name := "Owner"
	tenant, err := f.tenantRepo.Upsert(context.Background(), id, db_models.TenantPatch{Name: &name, Email: &email})
	require.NoError(t, err)
	return tenant
}

func (f *fixture) activate(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.subRepo.Upsert(context.Background(), id, db_models.ProviderStripe, db_models.SubStatusActive, "", "price_monthly"))
}

func dbPatch(name, role, custom string) db_models.TenantPatch {
	return db_models.TenantPatch{Name: &name, Role: &role, PromptCustom: &custom}
}
