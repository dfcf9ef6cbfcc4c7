package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"bettybots/internal/models/db_models"
	"bettybots/pkg/config"
	"bettybots/pkg/utils"
)

// StripeEvent is a verified webhook event. Normalized is nil for event types
// that do not touch the subscription store, and when the object could not be
// decoded, in which case DecodeErr is set.
type StripeEvent struct {
	ID         string
	Type       string
	Normalized *NormalizedEvent
	DecodeErr  error
}

type StripeAdapterInterface interface {
	CreateCheckoutURL(tenant *db_models.Tenant) (string, error)
	// VerifyWebhook checks the Stripe-Signature header before decoding anything.
	VerifyWebhook(payload []byte, sigHeader string) (*StripeEvent, error)
}

// stripeObject is the subset of a checkout session or subscription object the
// webhook reads.
type stripeObject struct {
	ClientReferenceID string         `json:"client_reference_id"`
	Metadata          map[string]any `json:"metadata"`
	CustomerEmail     string         `json:"customer_email"`
	CustomerDetails   *struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

func (o stripeObject) tenantID() string {
	if id := strings.TrimSpace(o.ClientReferenceID); id != "" {
		return id
	}
	tenant, _ := o.Metadata["tenant"].(string)
	return strings.TrimSpace(tenant)
}

func (o stripeObject) email() string {
	if o.CustomerDetails != nil && o.CustomerDetails.Email != "" {
		return o.CustomerDetails.Email
	}
	return o.CustomerEmail
}

type StripeAdapter struct {
	cfg                   *config.Config
	log                   *zap.Logger
	sessions              *stripesession.Client
	createCheckoutSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewStripeAdapter keeps the secret key on its own session client, so the
// package-level stripe.Key is never written.
func NewStripeAdapter(cfg *config.Config, log *zap.Logger) *StripeAdapter {
	sessions := &stripesession.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: strings.TrimSpace(cfg.StripeSecretKey),
	}
	return &StripeAdapter{
		cfg:                   cfg,
		log:                   log,
		sessions:              sessions,
		createCheckoutSession: sessions.New,
	}
}

func (a *StripeAdapter) CreateCheckoutURL(tenant *db_models.Tenant) (string, error) {
	if !a.cfg.StripeConfigured() {
		return "", utils.ErrStripeNotConfigured
	}

	q := url.QueryEscape(tenant.TenantID)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(a.cfg.BaseURL + "/bot?tenant=" + q),
		CancelURL:         stripe.String(a.cfg.BaseURL + "/pay?tenant=" + q),
		ClientReferenceID: stripe.String(tenant.TenantID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(strings.TrimSpace(a.cfg.StripePriceID)),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{"tenant": tenant.TenantID},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"tenant": tenant.TenantID},
		},
	}
	if tenant.Email != "" {
		params.CustomerEmail = stripe.String(tenant.Email)
	}

	session, err := a.createCheckoutSession(params)
	if err != nil {
		a.log.Warn("stripe checkout session creation failed",
			zap.String("tenant", tenant.TenantID),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", utils.ErrCheckoutSessionFailed, err)
	}
	if session == nil || session.URL == "" {
		return "", utils.ErrCheckoutSessionFailed
	}
	return session.URL, nil
}

func (a *StripeAdapter) VerifyWebhook(payload []byte, sigHeader string) (*StripeEvent, error) {
	secret := strings.TrimSpace(a.cfg.StripeWebhookSecret)
	if secret == "" {
		return nil, utils.ErrWebhookSecretMissing
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %w", utils.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidPayload, err)
	}

	out := &StripeEvent{ID: event.ID, Type: string(event.Type)}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated:
		var obj stripeObject
		if event.Data != nil && len(event.Data.Raw) > 0 {
			if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
				out.DecodeErr = fmt.Errorf("%w: %w", utils.ErrInvalidPayload, err)
				return out, nil
			}
		}
		out.Normalized = &NormalizedEvent{
			TenantID: obj.tenantID(),
			Provider: db_models.ProviderStripe,
			Status:   db_models.SubStatusActive,
			Email:    obj.email(),
			PlanID:   a.cfg.StripePriceID,
		}
	}

	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
