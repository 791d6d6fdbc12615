package main

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/app"
)

func main() {
	fx.New(
		app.CreateApp(),
		fx.Invoke(run),
	).Run()
}

func run(
	lc fx.Lifecycle,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().
				Str("service", cfg.Service.Name).
				Str("port", cfg.Service.Port).
				Dur("collection_interval", cfg.Collector.Interval).
				Int("window_hours", cfg.Collector.WindowHours).
				Msg("Collector service started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Collector service stopped")
			return nil
		},
	})
}
