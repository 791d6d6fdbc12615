package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/http/server"
)

// Module provides the HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
)

// NewServerFx creates the HTTP server with lifecycle hooks for fx DI
func NewServerFx(lc fx.Lifecycle, cfg *config.ServiceConfig, logger zerolog.Logger) *server.Server {
	srv := server.NewServer(cfg.Name, cfg.Port, logger)
	srv.RegisterMetrics()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
