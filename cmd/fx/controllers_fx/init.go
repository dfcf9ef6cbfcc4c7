package controllers_fx

import (
	"go.uber.org/fx"

	"bettybots/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewPageController),
	fx.Provide(controllers.NewTenantController),
	fx.Provide(controllers.NewChatController),
	fx.Provide(controllers.NewLeadController),
	fx.Provide(controllers.NewHealthController))
