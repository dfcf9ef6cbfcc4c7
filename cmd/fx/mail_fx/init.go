package mail_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bettybots/internal/services"
	"bettybots/pkg/config"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config, log *zap.Logger) services.IMailService {
	if cfg.SMTP.Host == "" || cfg.SMTP.Username == "" {
		log.Warn("SMTP not configured, notification emails are disabled")
	}
	return services.NewSMTPMailService(cfg, log.Named("mail"))
}
