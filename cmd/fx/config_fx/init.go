package config_fx

import (
	"go.uber.org/fx"

	"bettybots/pkg/config"
)

var Module = fx.Provide(config.Load)
