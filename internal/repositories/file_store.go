package repositories

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bettybots/internal/models/db_models"
	"bettybots/pkg/utils"
)

// fileDir is one directory holding a JSON document per tenant id. The mutex
// makes each read-merge-write of a single document atomic inside the process;
// files are replaced with a rename so readers never see a partial write.
type fileDir struct {
	mu   sync.Mutex
	path string
}

func newFileDir(root, name string) (*fileDir, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", name, err)
	}
	return &fileDir{path: dir}, nil
}

func (d *fileDir) file(tenantID, ext string) string {
	return filepath.Join(d.path, tenantID+ext)
}

// read decodes the document for tenantID into v and reports whether it existed.
func (d *fileDir) read(tenantID string, v any) (bool, error) {
	raw, err := os.ReadFile(d.file(tenantID, ".json"))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", tenantID, err)
	}
	return true, nil
}

func (d *fileDir) write(tenantID string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.path, "."+tenantID+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), d.file(tenantID, ".json"))
}

type fileTenantRepository struct {
	tenants  *fileDir
	leads    *fileDir
	defaults db_models.TenantDefaults
}

// NewFileTenantRepository stores each tenant in <root>/tenants/<id>.json and
// its lead log in <root>/leads/<id>.jsonl.
func NewFileTenantRepository(root string, defaults db_models.TenantDefaults) (TenantRepository, error) {
	tenants, err := newFileDir(root, "tenants")
	if err != nil {
		return nil, err
	}
	leads, err := newFileDir(root, "leads")
	if err != nil {
		return nil, err
	}
	return &fileTenantRepository{tenants: tenants, leads: leads, defaults: defaults}, nil
}

func (r *fileTenantRepository) Upsert(ctx context.Context, tenantID string, patch db_models.TenantPatch) (*db_models.Tenant, error) {
	tenantID = strings.TrimSpace(tenantID)
	if !utils.ValidTenantID(tenantID) {
		return nil, utils.ErrInvalidTenantID
	}

	r.tenants.mu.Lock()
	defer r.tenants.mu.Unlock()

	var tenant db_models.Tenant
	found, err := r.tenants.read(tenantID, &tenant)
	if err != nil {
		return nil, fmt.Errorf("%w: read tenant: %w", utils.ErrDatabaseError, err)
	}

	if !found {
		tenant = db_models.Tenant{TenantID: tenantID}
		patch.Apply(&tenant)
		r.defaults.Apply(&tenant)
	} else {
		patch.Apply(&tenant)
	}
	tenant.Touch(time.Now())

	if err := r.tenants.write(tenantID, &tenant); err != nil {
		return nil, fmt.Errorf("%w: write tenant: %w", utils.ErrDatabaseError, err)
	}
	return &tenant, nil
}

func (r *fileTenantRepository) FindByID(ctx context.Context, tenantID string) (*db_models.Tenant, error) {
	tenantID = strings.TrimSpace(tenantID)
	if !utils.ValidTenantID(tenantID) {
		return nil, nil
	}

	var tenant db_models.Tenant
	found, err := r.tenants.read(tenantID, &tenant)
	if err != nil {
		return nil, fmt.Errorf("%w: read tenant: %w", utils.ErrDatabaseError, err)
	}
	if !found {
		return nil, nil
	}
	return &tenant, nil
}

func (r *fileTenantRepository) AppendLead(ctx context.Context, lead *db_models.Lead) error {
	if !utils.ValidTenantID(lead.TenantID) {
		return utils.ErrTenantNotFound
	}
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.CreatedAt == 0 {
		lead.CreatedAt = time.Now().Unix()
	}

	r.tenants.mu.Lock()
	defer r.tenants.mu.Unlock()

	var tenant db_models.Tenant
	found, err := r.tenants.read(lead.TenantID, &tenant)
	if err != nil {
		return fmt.Errorf("%w: read tenant: %w", utils.ErrDatabaseError, err)
	}
	if !found {
		return utils.ErrTenantNotFound
	}

	if err := r.appendLog(lead); err != nil {
		return fmt.Errorf("%w: append lead log: %w", utils.ErrDatabaseError, err)
	}

	tenant.Leads = db_models.AppendRecentLead(tenant.Leads, lead.Entry())
	tenant.Touch(time.Now())
	if err := r.tenants.write(lead.TenantID, &tenant); err != nil {
		return fmt.Errorf("%w: write tenant: %w", utils.ErrDatabaseError, err)
	}
	return nil
}

func (r *fileTenantRepository) appendLog(lead *db_models.Lead) error {
	r.leads.mu.Lock()
	defer r.leads.mu.Unlock()

	f, err := os.OpenFile(r.leads.file(lead.TenantID, ".jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	line, err := json.Marshal(lead)
	if err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (r *fileTenantRepository) ListLeads(ctx context.Context, tenantID string) ([]db_models.Lead, error) {
	if !utils.ValidTenantID(tenantID) {
		return nil, nil
	}

	f, err := os.Open(r.leads.file(tenantID, ".jsonl"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open lead log: %w", utils.ErrDatabaseError, err)
	}
	defer f.Close()

	var leads []db_models.Lead
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var lead db_models.Lead
		if err := json.Unmarshal(scanner.Bytes(), &lead); err != nil {
			return nil, fmt.Errorf("%w: decode lead log: %w", utils.ErrDatabaseError, err)
		}
		leads = append(leads, lead)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read lead log: %w", utils.ErrDatabaseError, err)
	}
	return leads, nil
}

type fileSubscriptionRepository struct {
	subs *fileDir
}

// NewFileSubscriptionRepository stores each subscription in
// <root>/subscriptions/<id>.json.
func NewFileSubscriptionRepository(root string) (SubscriptionRepository, error) {
	subs, err := newFileDir(root, "subscriptions")
	if err != nil {
		return nil, err
	}
	return &fileSubscriptionRepository{subs: subs}, nil
}

func (r *fileSubscriptionRepository) Upsert(ctx context.Context, tenantID string, provider db_models.Provider, status db_models.SubscriptionStatus, email, planID string) error {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil
	}
	if !utils.ValidTenantID(tenantID) {
		return utils.ErrInvalidTenantID
	}

	r.subs.mu.Lock()
	defer r.subs.mu.Unlock()

	var sub db_models.Subscription
	if _, err := r.subs.read(tenantID, &sub); err != nil {
		return fmt.Errorf("%w: read subscription: %w", utils.ErrDatabaseError, err)
	}

	sub.TenantID = tenantID
	sub.Provider = provider
	sub.Status = status
	sub.Email = email
	sub.PlanID = planID
	sub.Touch(time.Now())

	if err := r.subs.write(tenantID, &sub); err != nil {
		return fmt.Errorf("%w: write subscription: %w", utils.ErrDatabaseError, err)
	}
	return nil
}

func (r *fileSubscriptionRepository) FindByTenantID(ctx context.Context, tenantID string) (*db_models.Subscription, error) {
	tenantID = strings.TrimSpace(tenantID)
	if !utils.ValidTenantID(tenantID) {
		return nil, nil
	}

	var sub db_models.Subscription
	found, err := r.subs.read(tenantID, &sub)
	if err != nil {
		return nil, fmt.Errorf("%w: read subscription: %w", utils.ErrDatabaseError, err)
	}
	if !found {
		return nil, nil
	}
	return &sub, nil
}
