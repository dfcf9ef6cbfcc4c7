package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bettybots/internal/api/controllers"
	"bettybots/internal/services"
	"bettybots/pkg/config"
)

var Module = fx.Provide(
	fx.Annotate(services.NewStripeAdapter, fx.As(new(services.StripeAdapterInterface))),
	fx.Annotate(services.NewPayPalAdapter, fx.As(new(services.PayPalAdapterInterface))),
	providePaymentService,
	controllers.NewPaymentController,
)

func providePaymentService(
	cfg *config.Config,
	log *zap.Logger,
	tenants services.TenantServiceInterface,
	subscriptions services.SubscriptionServiceInterface,
	stripe services.StripeAdapterInterface,
	paypal services.PayPalAdapterInterface,
	mail services.IMailService,
) services.PaymentService {
	if !cfg.StripeConfigured() {
		log.Warn("Stripe not configured, checkout is disabled")
	}
	if !cfg.PayPalConfigured() {
		log.Warn("PayPal not configured, verification is disabled")
	}
	return services.NewPaymentService(tenants, subscriptions, stripe, paypal, mail, cfg.PayPalPlanID, log.Named("payments"))
}
