package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/ratelimit"
)

// Module provides the Telegram source client for fx DI
var Module = fx.Module("telegram",
	fx.Provide(
		NewPipelineLimiter,
		NewSourceClientFx,
	),
)

// NewPipelineLimiter builds the two-tier request limiter from config
func NewPipelineLimiter(cfg *config.RateLimitConfig) *ratelimit.Limiter {
	return ratelimit.New(cfg.PerSecond, cfg.PerMinute)
}

// NewSourceClientFx creates the MTProto client with lifecycle hooks for fx DI
func NewSourceClientFx(
	lc fx.Lifecycle,
	telegramCfg *config.TelegramConfig,
	retryCfg *config.RetryConfig,
	pipeline *ratelimit.Limiter,
	logger zerolog.Logger,
) (deps.SourceClient, error) {
	client, err := NewClient(telegramCfg, retryCfg, pipeline, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			connectCtx := ctx
			if telegramCfg.ConnectTimeout > 0 {
				var cancel context.CancelFunc
				connectCtx, cancel = context.WithTimeout(ctx, telegramCfg.ConnectTimeout)
				defer cancel()
			}
			if err := client.Connect(connectCtx); err != nil {
				// A dead source at startup should not take the service
				// down; runs report the failure per channel instead.
				logger.Error().Err(err).Msg("Telegram connection failed, collection runs will retry")
				return nil
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return client, nil
}
