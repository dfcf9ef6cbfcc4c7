package ratelimit_fx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bettybots/internal/infra"
	"bettybots/pkg/config"
	"bettybots/pkg/ratelimit"
)

var Module = fx.Provide(provideLimiter)

// provideLimiter shares counters through Redis when REDIS_URL is set.
func provideLimiter(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (ratelimit.Allower, error) {
	if cfg.RedisURL == "" {
		limiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
		lc.Append(fx.StopHook(limiter.Stop))
		return limiter, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(client.Close))
	log.Info("rate limiter backed by redis")

	return ratelimit.NewRedisLimiter(client, cfg.RateLimitPerMinute, time.Minute), nil
}
