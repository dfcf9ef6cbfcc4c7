package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bettybots/cmd/fx/db_fx"
	"bettybots/cmd/fx/logger_fx"
	"bettybots/internal/models/db_models"
	"bettybots/pkg/config"
	"bettybots/pkg/utils"
)

const commandTimeout = 30 * time.Second

// openStores is swapped in tests.
var openStores = func() (db_fx.Stores, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return db_fx.Stores{}, nil, err
	}
	log, err := logger_fx.NewLogger(cfg)
	if err != nil {
		return db_fx.Stores{}, nil, err
	}
	stores, closeFn, err := db_fx.OpenStores(cfg, log)
	if err != nil {
		return db_fx.Stores{}, nil, err
	}
	return stores, func() {
		closeFn()
		_ = log.Sync()
	}, nil
}

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Inspect tenants",
}

var tenantGetCmd = &cobra.Command{
	Use:   "get <tenant_id>",
	Short: "Print a tenant record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, closeFn, err := openStores()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		tenant, err := stores.Tenants.FindByID(ctx, args[0])
		if err != nil {
			return err
		}
		if tenant == nil {
			return fmt.Errorf("tenant %q: %w", args[0], utils.ErrTenantNotFound)
		}
		return printJSON(cmd.OutOrStdout(), tenant)
	},
}

var tenantLeadsCmd = &cobra.Command{
	Use:   "leads <tenant_id>",
	Short: "Print the durable lead log of a tenant as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, closeFn, err := openStores()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		leads, err := stores.Tenants.ListLeads(ctx, args[0])
		if err != nil {
			return err
		}
		if leads == nil {
			leads = []db_models.Lead{}
		}
		return printJSON(cmd.OutOrStdout(), leads)
	},
}

var subscriptionCmd = &cobra.Command{
	Use:     "subscription",
	Aliases: []string{"sub"},
	Short:   "Inspect or reconcile subscriptions",
}

var subscriptionGetCmd = &cobra.Command{
	Use:   "get <tenant_id>",
	Short: "Print a subscription record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, closeFn, err := openStores()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		sub, err := stores.Subscriptions.FindByTenantID(ctx, args[0])
		if err != nil {
			return err
		}
		if sub == nil {
			return fmt.Errorf("no subscription recorded for %q", args[0])
		}
		return printJSON(cmd.OutOrStdout(), sub)
	},
}

var subscriptionSetFlags struct {
	status   string
	provider string
	email    string
	plan     string
}

var subscriptionSetCmd = &cobra.Command{
	Use:   "set <tenant_id>",
	Short: "Overwrite a subscription record by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := parseStatus(subscriptionSetFlags.status)
		if err != nil {
			return err
		}
		tenantID := strings.TrimSpace(args[0])
		if !utils.ValidTenantID(tenantID) {
			return fmt.Errorf("invalid tenant id %q", tenantID)
		}

		stores, closeFn, err := openStores()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		err = stores.Subscriptions.Upsert(ctx, tenantID,
			db_models.Provider(strings.ToLower(subscriptionSetFlags.provider)),
			status,
			subscriptionSetFlags.email,
			subscriptionSetFlags.plan)
		if err != nil {
			return err
		}

		sub, err := stores.Subscriptions.FindByTenantID(ctx, tenantID)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), sub)
	},
}

var slugCmd = &cobra.Command{
	Use:   "slug <email>",
	Short: "Print the tenant id derived from an email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), utils.DeriveTenantID("", args[0], time.Now()))
		return err
	},
}

func init() {
	tenantCmd.AddCommand(tenantGetCmd, tenantLeadsCmd)

	f := subscriptionSetCmd.Flags()
	f.StringVar(&subscriptionSetFlags.status, "status", "", "active, trialing, past_due, canceled or expired")
	f.StringVar(&subscriptionSetFlags.provider, "provider", string(db_models.ProviderManual), "stripe, paypal or manual")
	f.StringVar(&subscriptionSetFlags.email, "email", "", "subscriber email")
	f.StringVar(&subscriptionSetFlags.plan, "plan", "", "provider plan or price id")
	_ = subscriptionSetCmd.MarkFlagRequired("status")

	subscriptionCmd.AddCommand(subscriptionGetCmd, subscriptionSetCmd)
}

func parseStatus(s string) (db_models.SubscriptionStatus, error) {
	status := db_models.SubscriptionStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case db_models.SubStatusActive, db_models.SubStatusTrialing, db_models.SubStatusPastDue,
		db_models.SubStatusCanceled, db_models.SubStatusExpired:
		return status, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
