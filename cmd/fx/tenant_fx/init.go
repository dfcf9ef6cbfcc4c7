package tenant_fx

import (
	"go.uber.org/fx"

	"bettybots/internal/services"
)

var Module = fx.Provide(
	fx.Annotate(services.NewTenantService, fx.As(new(services.TenantServiceInterface))),
	fx.Annotate(services.NewSubscriptionService, fx.As(new(services.SubscriptionServiceInterface))),
	fx.Annotate(services.NewLeadService, fx.As(new(services.LeadServiceInterface))),
)
