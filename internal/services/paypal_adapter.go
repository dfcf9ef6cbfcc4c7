package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"bettybots/pkg/config"
	"bettybots/pkg/utils"
)

// PayPalSubscription is the part of GET /v1/billing/subscriptions/{id} we use.
type PayPalSubscription struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PlanID     string `json:"plan_id"`
	Subscriber struct {
		EmailAddress string `json:"email_address"`
	} `json:"subscriber"`
}

type PayPalAdapterInterface interface {
	// GetSubscription returns a VerificationError with reason "lookup-failed"
	// when PayPal does not answer 200.
	GetSubscription(ctx context.Context, subscriptionID string) (*PayPalSubscription, error)
}

type PayPalAdapter struct {
	cfg    *config.Config
	log    *zap.Logger
	client *resty.Client
	oauth  *clientcredentials.Config
}

func NewPayPalAdapter(cfg *config.Config, log *zap.Logger) *PayPalAdapter {
	base := strings.TrimRight(cfg.PayPalAPIBase, "/")

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.ProviderTimeout).
		SetHeader("Accept", "application/json")

	return &PayPalAdapter{
		cfg:    cfg,
		log:    log,
		client: client,
		oauth: &clientcredentials.Config{
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
			TokenURL:     base + "/v1/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
}

func (a *PayPalAdapter) GetSubscription(ctx context.Context, subscriptionID string) (*PayPalSubscription, error) {
	if !a.cfg.PayPalConfigured() {
		return nil, utils.ErrPayPalNotConfigured
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: a.cfg.ProviderTimeout})
	token, err := a.oauth.Token(tokenCtx)
	if err != nil {
		a.log.Warn("paypal token exchange failed", zap.Error(err))
		return nil, &utils.VerificationError{Reason: utils.ErrLookupFailed.Error(), Err: err}
	}

	var sub PayPalSubscription
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&sub).
		Get("/v1/billing/subscriptions/" + url.PathEscape(subscriptionID))
	if err != nil {
		a.log.Warn("paypal subscription lookup failed",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, &utils.VerificationError{Reason: utils.ErrLookupFailed.Error(), Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		a.log.Warn("paypal subscription lookup rejected",
			zap.String("subscription_id", subscriptionID),
			zap.Int("status_code", resp.StatusCode()))
		return nil, &utils.VerificationError{
			Reason: utils.ErrLookupFailed.Error(),
			Err:    fmt.Errorf("paypal answered %d", resp.StatusCode()),
		}
	}

	return &sub, nil
}
