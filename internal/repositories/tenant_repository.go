package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bettybots/internal/models/db_models"
	"bettybots/pkg/utils"
)

// TenantRepository stores tenant profiles keyed by tenant id. Writes are
// last-write-wins; Upsert only overwrites the fields present in the patch.
type TenantRepository interface {
	Upsert(ctx context.Context, tenantID string, patch db_models.TenantPatch) (*db_models.Tenant, error)
	// FindByID returns nil, nil when the tenant does not exist.
	FindByID(ctx context.Context, tenantID string) (*db_models.Tenant, error)
	// AppendLead writes lead to the durable log and to the tenant's bounded
	// recent list. It returns utils.ErrTenantNotFound for unknown tenants.
	AppendLead(ctx context.Context, lead *db_models.Lead) error
	ListLeads(ctx context.Context, tenantID string) ([]db_models.Lead, error)
}

type tenantRepository struct {
	db       *gorm.DB
	defaults db_models.TenantDefaults
}

func NewTenantRepository(db *gorm.DB, defaults db_models.TenantDefaults) TenantRepository {
	return &tenantRepository{
		db:       db,
		defaults: defaults,
	}
}

func (r *tenantRepository) Upsert(ctx context.Context, tenantID string, patch db_models.TenantPatch) (*db_models.Tenant, error) {
	tenantID = strings.TrimSpace(tenantID)
	if !utils.ValidTenantID(tenantID) {
		return nil, utils.ErrInvalidTenantID
	}

	var tenant db_models.Tenant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&tenant, "tenant_id = ?", tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tenant = db_models.Tenant{TenantID: tenantID}
			patch.Apply(&tenant)
			r.defaults.Apply(&tenant)

			onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "tenant_id"}}, DoNothing: true}
			if cols := patch.Columns(); len(cols) > 0 {
				onConflict = clause.OnConflict{Columns: []clause.Column{{Name: "tenant_id"}}, DoUpdates: clause.Assignments(cols)}
			}
			if err := tx.Clauses(onConflict).Create(&tenant).Error; err != nil {
				return err
			}
			return tx.First(&tenant, "tenant_id = ?", tenantID).Error
		}
		if err != nil {
			return err
		}

		if cols := patch.Columns(); len(cols) > 0 {
			if err := tx.Model(&tenant).Updates(cols).Error; err != nil {
				return err
			}
		}
		return tx.First(&tenant, "tenant_id = ?", tenantID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: upsert tenant %s: %w", utils.ErrDatabaseError, tenantID, err)
	}

	return &tenant, nil
}

func (r *tenantRepository) FindByID(ctx context.Context, tenantID string) (*db_models.Tenant, error) {
	tenantID = strings.TrimSpace(tenantID)
	if !utils.ValidTenantID(tenantID) {
		return nil, nil
	}

	var tenant db_models.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "tenant_id = ?", tenantID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find tenant: %w", utils.ErrDatabaseError, err)
	}

	return &tenant, nil
}

func (r *tenantRepository) AppendLead(ctx context.Context, lead *db_models.Lead) error {
	if !utils.ValidTenantID(lead.TenantID) {
		return utils.ErrTenantNotFound
	}
	if lead.CreatedAt == 0 {
		lead.CreatedAt = time.Now().Unix()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant db_models.Tenant
		if err := tx.First(&tenant, "tenant_id = ?", lead.TenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrTenantNotFound
			}
			return err
		}

		if err := tx.Create(lead).Error; err != nil {
			return err
		}

		recent := db_models.AppendRecentLead(tenant.Leads, lead.Entry())
		return tx.Model(&tenant).Update("leads", datatypes.JSONSlice[db_models.LeadEntry](recent)).Error
	})

	if errors.Is(err, utils.ErrTenantNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: append lead: %w", utils.ErrDatabaseError, err)
	}
	return nil
}

func (r *tenantRepository) ListLeads(ctx context.Context, tenantID string) ([]db_models.Lead, error) {
	if !utils.ValidTenantID(tenantID) {
		return nil, nil
	}

	var leads []db_models.Lead
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&leads).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list leads: %w", utils.ErrDatabaseError, err)
	}
	return leads, nil
}
