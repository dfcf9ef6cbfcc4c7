package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bettybots/internal/infra"
	"bettybots/internal/models/db_models"
	"bettybots/pkg/utils"
)

var testDefaults = db_models.TenantDefaults{Role: "psychologue", Color: "#2563eb", Welcome: "Bonjour"}

type backend struct {
	tenants  TenantRepository
	subs     SubscriptionRepository
	backdate func(t *testing.T, tenantID string, createdAt int64)
}

func backends(t *testing.T) map[string]backend {
	t.Helper()

	db, err := infra.OpenDatabase(filepath.Join(t.TempDir(), "bettybots.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { infra.CloseDatabase(db, zap.NewNop()) })

	root := t.TempDir()
	fileTenants, err := NewFileTenantRepository(root, testDefaults)
	require.NoError(t, err)
	fileSubs, err := NewFileSubscriptionRepository(root)
	require.NoError(t, err)

	return map[string]backend{
		"sql": {
			tenants: NewTenantRepository(db, testDefaults),
			subs:    NewSubscriptionRepository(db),
			backdate: func(t *testing.T, tenantID string, createdAt int64) {
				require.NoError(t, db.Model(&db_models.Subscription{}).
					Where("tenant_id = ?", tenantID).
					Update("created_at", createdAt).Error)
			},
		},
		"file": {
			tenants: fileTenants,
			subs:    fileSubs,
			backdate: func(t *testing.T, tenantID string, createdAt int64) {
				path := filepath.Join(root, "subscriptions", tenantID+".json")
				var sub db_models.Subscription
				found, err := (&fileDir{path: filepath.Dir(path)}).read(tenantID, &sub)
				require.NoError(t, err)
				require.True(t, found)
				sub.CreatedAt = createdAt
				require.NoError(t, (&fileDir{path: filepath.Dir(path)}).write(tenantID, &sub))
			},
		},
	}
}

func strPtr(s string) *string { return &s }

func TestTenantUpsertCreatesWithDefaults(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			tenant, err := b.tenants.Upsert(ctx, "a-b-com", db_models.TenantPatch{
				Name:  strPtr("Ana"),
				Email: strPtr("a@b.com"),
			})
			require.NoError(t, err)

			assert.Equal(t, "a-b-com", tenant.TenantID)
			assert.Equal(t, "Ana", tenant.Name)
			assert.Equal(t, "psychologue", tenant.Role)
			assert.Equal(t, "#2563eb", tenant.Color)
			assert.Equal(t, "Bonjour", tenant.Welcome)
			assert.NotZero(t, tenant.CreatedAt)
		})
	}
}

func TestTenantUpsertMergesPresentFieldsOnly(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := b.tenants.Upsert(ctx, "shop", db_models.TenantPatch{
				Name:         strPtr("Shop"),
				Email:        strPtr("owner@shop.fr"),
				Role:         strPtr("immobilier"),
				AvatarURL:    strPtr("https://cdn/avatar.png"),
				PromptCustom: strPtr("Parle de nos biens à Lyon."),
			})
			require.NoError(t, err)

			_, err = b.tenants.Upsert(ctx, "shop", db_models.TenantPatch{Color: strPtr("#ff0000")})
			require.NoError(t, err)

			got, err := b.tenants.FindByID(ctx, "shop")
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, "#ff0000", got.Color)
			assert.Equal(t, "Shop", got.Name)
			assert.Equal(t, "owner@shop.fr", got.Email)
			assert.Equal(t, "immobilier", got.Role)
			assert.Equal(t, "https://cdn/avatar.png", got.AvatarURL)
			assert.Equal(t, "Parle de nos biens à Lyon.", got.PromptCustom)
		})
	}
}

func TestTenantFindUnknown(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := b.tenants.FindByID(context.Background(), "nobody")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestAppendLeadTrimsRecentList(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := b.tenants.Upsert(ctx, "leady", db_models.TenantPatch{Name: strPtr("Leady")})
			require.NoError(t, err)

			const total = db_models.MaxRecentLeads + 5
			for i := 0; i < total; i++ {
				err := b.tenants.AppendLead(ctx, &db_models.Lead{
					TenantID:  "leady",
					Name:      fmt.Sprintf("visitor %d", i),
					Email:     fmt.Sprintf("v%d@example.com", i),
					Need:      "info",
					CreatedAt: int64(1700000000 + i),
				})
				require.NoError(t, err)
			}

			tenant, err := b.tenants.FindByID(ctx, "leady")
			require.NoError(t, err)
			require.Len(t, tenant.Leads, db_models.MaxRecentLeads)
			assert.Equal(t, "visitor 5", tenant.Leads[0].Name)
			assert.Equal(t, fmt.Sprintf("visitor %d", total-1), tenant.Leads[len(tenant.Leads)-1].Name)

			log, err := b.tenants.ListLeads(ctx, "leady")
			require.NoError(t, err)
			assert.Len(t, log, total)
		})
	}
}

func TestAppendLeadUnknownTenant(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := b.tenants.AppendLead(context.Background(), &db_models.Lead{TenantID: "ghost", Name: "x"})
			assert.ErrorIs(t, err, utils.ErrTenantNotFound)
		})
	}
}

func TestSubscriptionUpsert(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, b.subs.Upsert(ctx, "a-b-com", db_models.ProviderStripe, db_models.SubStatusActive, "a@b.com", "price_1"))
			b.backdate(t, "a-b-com", 42)

			require.NoError(t, b.subs.Upsert(ctx, "a-b-com", db_models.ProviderPayPal, db_models.SubStatusCanceled, "", "P-1"))

			sub, err := b.subs.FindByTenantID(ctx, "a-b-com")
			require.NoError(t, err)
			require.NotNil(t, sub)

			assert.Equal(t, db_models.ProviderPayPal, sub.Provider)
			assert.Equal(t, db_models.SubStatusCanceled, sub.Status)
			assert.Equal(t, "", sub.Email)
			assert.Equal(t, "P-1", sub.PlanID)
			assert.Equal(t, int64(42), sub.CreatedAt, "created_at survives updates")
		})
	}
}

func TestSubscriptionUpsertBlankTenantIsNoop(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, b.subs.Upsert(ctx, "   ", db_models.ProviderStripe, db_models.SubStatusActive, "", ""))

			sub, err := b.subs.FindByTenantID(ctx, "")
			require.NoError(t, err)
			assert.Nil(t, sub)
		})
	}
}

func TestMalformedTenantIDRejected(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tenantName := "Demo"

			_, err := b.tenants.Upsert(ctx, "Demo Tenant", db_models.TenantPatch{Name: &tenantName})
			assert.ErrorIs(t, err, utils.ErrInvalidTenantID)

			err = b.subs.Upsert(ctx, "Demo Tenant", db_models.ProviderStripe, db_models.SubStatusActive, "", "")
			assert.ErrorIs(t, err, utils.ErrInvalidTenantID)

			tenant, err := b.tenants.FindByID(ctx, "Demo Tenant")
			require.NoError(t, err)
			assert.Nil(t, tenant)

			sub, err := b.subs.FindByTenantID(ctx, "Demo Tenant")
			require.NoError(t, err)
			assert.Nil(t, sub)

			err = b.tenants.AppendLead(ctx, &db_models.Lead{TenantID: "Demo Tenant", Name: "x"})
			assert.ErrorIs(t, err, utils.ErrTenantNotFound)
		})
	}
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	root := t.TempDir()
	repo, err := NewFileTenantRepository(root, testDefaults)
	require.NoError(t, err)

	_, err = repo.Upsert(context.Background(), "../escape", db_models.TenantPatch{})
	assert.ErrorIs(t, err, utils.ErrInvalidTenantID)

	_, statErr := os.Stat(filepath.Join(root, "escape.json"))
	assert.True(t, os.IsNotExist(statErr))
}
