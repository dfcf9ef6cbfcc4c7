package db_fx

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bettybots/internal/infra"
	"bettybots/internal/models/db_models"
	"bettybots/internal/repositories"
	"bettybots/pkg/config"
)

var Module = fx.Provide(provideStores)

// Stores bundles the two repositories of the selected backend.
type Stores struct {
	fx.Out

	Tenants       repositories.TenantRepository
	Subscriptions repositories.SubscriptionRepository
}

func provideStores(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (Stores, error) {
	stores, closeFn, err := OpenStores(cfg, log)
	if err != nil {
		return Stores{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeFn()
			return nil
		},
	})
	return stores, nil
}

// OpenStores opens the backend named by STORE_BACKEND. The returned func
// releases it.
func OpenStores(cfg *config.Config, log *zap.Logger) (Stores, func(), error) {
	defaults := db_models.TenantDefaults{Role: cfg.DefaultRole, Color: cfg.DefaultColor}

	switch cfg.StoreBackend {
	case config.BackendFile:
		root, err := filepath.Abs(cfg.DataDir)
		if err != nil {
			return Stores{}, nil, err
		}
		tenants, err := repositories.NewFileTenantRepository(root, defaults)
		if err != nil {
			return Stores{}, nil, err
		}
		subs, err := repositories.NewFileSubscriptionRepository(root)
		if err != nil {
			return Stores{}, nil, err
		}
		log.Info("using file store", zap.String("dir", root))
		return Stores{Tenants: tenants, Subscriptions: subs}, func() {}, nil

	case config.BackendSQL, "":
		db, err := infra.OpenDatabase(cfg.DatabaseURL, log)
		if err != nil {
			return Stores{}, nil, err
		}
		return Stores{
			Tenants:       repositories.NewTenantRepository(db, defaults),
			Subscriptions: repositories.NewSubscriptionRepository(db),
		}, func() { infra.CloseDatabase(db, log) }, nil

	default:
		return Stores{}, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
