package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/pkg/metrics"
	"bettybots/pkg/utils"
)

type PaymentService interface {
	// CreateStripeCheckout returns the hosted checkout URL for the tenant.
	CreateStripeCheckout(ctx context.Context, tenantID string) (string, error)
	// HandleStripeWebhook only returns an error when the delivery cannot be
	// trusted. Failures after verification are logged and swallowed.
	HandleStripeWebhook(ctx context.Context, payload []byte, sigHeader string) error
	VerifyPayPal(ctx context.Context, tenantID, subscriptionID string) error
}

type paymentService struct {
	tenants       TenantServiceInterface
	subscriptions SubscriptionServiceInterface
	stripe        StripeAdapterInterface
	paypal        PayPalAdapterInterface
	mail          IMailService
	paypalPlanID  string
	log           *zap.Logger
}

func NewPaymentService(
	tenants TenantServiceInterface,
	subscriptions SubscriptionServiceInterface,
	stripe StripeAdapterInterface,
	paypal PayPalAdapterInterface,
	mail IMailService,
	paypalPlanID string,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		tenants:       tenants,
		subscriptions: subscriptions,
		stripe:        stripe,
		paypal:        paypal,
		mail:          mail,
		paypalPlanID:  paypalPlanID,
		log:           log,
	}
}

func (p *paymentService) CreateStripeCheckout(ctx context.Context, tenantID string) (string, error) {
	tenant, err := p.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, utils.ErrTenantNotFound) {
			return "", utils.NewValidationError(utils.ErrTenantNotFound.Error())
		}
		return "", err
	}
	return p.stripe.CreateCheckoutURL(tenant)
}

func (p *paymentService) HandleStripeWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := p.stripe.VerifyWebhook(payload, sigHeader)
	if err != nil {
		p.log.Warn("stripe webhook rejected", zap.Error(err))
		metrics.ObserveWebhook("", "rejected")
		return err
	}

	log := p.log.With(zap.String("event_id", event.ID), zap.String("type", event.Type))

	if event.DecodeErr != nil {
		log.Error("stripe webhook object undecodable", zap.Error(event.DecodeErr))
		metrics.ObserveWebhook(event.Type, "error")
		return nil
	}

	if event.Normalized == nil {
		if event.Type == "customer.subscription.deleted" {
			// Cancellations are reconciled by an operator with the CLI.
			log.Info("stripe subscription deleted, local status left unchanged")
		} else {
			log.Debug("stripe webhook ignored (unhandled type)")
		}
		metrics.ObserveWebhook(event.Type, "ignored")
		return nil
	}

	ev := *event.Normalized
	if ev.TenantID == "" {
		log.Warn("stripe webhook without tenant reference")
		metrics.ObserveWebhook(event.Type, "ignored")
		return nil
	}

	if err := p.subscriptions.Record(ctx, ev); err != nil {
		log.Error("stripe webhook processing failed", zap.String("tenant", ev.TenantID), zap.Error(err))
		metrics.ObserveWebhook(event.Type, "error")
		return nil
	}
	metrics.ObserveWebhook(event.Type, "processed")

	if event.Type == "checkout.session.completed" {
		p.sendConfirmation(ctx, ev)
	}
	return nil
}

func (p *paymentService) VerifyPayPal(ctx context.Context, tenantID, subscriptionID string) error {
	tenantID = strings.TrimSpace(tenantID)
	subscriptionID = strings.TrimSpace(subscriptionID)
	if tenantID == "" || subscriptionID == "" {
		metrics.ObservePayPalVerification("invalid")
		return utils.NewValidationError("missing-tenant-or-subscription")
	}

	if _, err := p.tenants.GetTenant(ctx, tenantID); err != nil {
		return err
	}

	sub, err := p.paypal.GetSubscription(ctx, subscriptionID)
	if err != nil {
		metrics.ObservePayPalVerification("lookup_failed")
		return err
	}

	if sub.Status != "ACTIVE" {
		reason := sub.Status
		if reason == "" {
			reason = "unknown"
		}
		p.log.Info("paypal subscription not active",
			zap.String("tenant", tenantID),
			zap.String("subscription_id", subscriptionID),
			zap.String("status", reason))
		metrics.ObservePayPalVerification("inactive")
		return &utils.VerificationError{Reason: reason}
	}

	ev := NormalizedEvent{
		TenantID: tenantID,
		Provider: db_models.ProviderPayPal,
		Status:   db_models.SubStatusActive,
		Email:    sub.Subscriber.EmailAddress,
		PlanID:   p.paypalPlanID,
	}
	if err := p.subscriptions.Record(ctx, ev); err != nil {
		metrics.ObservePayPalVerification("error")
		return err
	}
	metrics.ObservePayPalVerification("active")

	p.sendConfirmation(ctx, ev)
	return nil
}

// sendConfirmation mails the embed snippet to the billing email, or to the
// tenant's own email when the provider did not report one.
func (p *paymentService) sendConfirmation(ctx context.Context, ev NormalizedEvent) {
	to := strings.TrimSpace(ev.Email)
	snippet := ""

	tenant, err := p.tenants.GetTenant(ctx, ev.TenantID)
	switch {
	case err == nil:
		snippet = p.tenants.EmbedSnippet(tenant)
		if to == "" {
			to = tenant.Email
		}
	case errors.Is(err, utils.ErrTenantNotFound):
		p.log.Warn("confirmation for unknown tenant", zap.String("tenant", ev.TenantID))
	default:
		p.log.Warn("tenant lookup for confirmation failed", zap.String("tenant", ev.TenantID), zap.Error(err))
	}

	p.mail.SendSubscriptionConfirmation(ev.TenantID, to, ev.Provider, snippet)
}
