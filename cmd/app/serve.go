package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bettybots/cmd/fx/chat_fx"
	"bettybots/cmd/fx/config_fx"
	"bettybots/cmd/fx/controllers_fx"
	"bettybots/cmd/fx/db_fx"
	"bettybots/cmd/fx/logger_fx"
	"bettybots/cmd/fx/mail_fx"
	"bettybots/cmd/fx/payment_service_fx"
	"bettybots/cmd/fx/ratelimit_fx"
	"bettybots/cmd/fx/tenant_fx"
	"bettybots/internal/api"
	"bettybots/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		ratelimit_fx.Module,
		mail_fx.Module,
		tenant_fx.Module,
		chat_fx.Module,
		payment_service_fx.Module,
		controllers_fx.Module,

		fx.Provide(api.NewRouter),
		fx.Invoke(StartServer),
	)
	if err := app.Err(); err != nil {
		return err
	}

	app.Run()
	return nil
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				log.Info("starting HTTP server", zap.String("addr", srv.Addr), zap.String("base_url", cfg.BaseURL))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
