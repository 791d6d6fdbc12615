package collection

import (
	"context"

	"go.uber.org/fx"

	deliveryhttp "github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/delivery/http"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/repository/postgres"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/usecase/business"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/workers"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/http/server"
)

// Module provides collection domain components for fx DI
var Module = fx.Module("collection",
	fx.Provide(
		postgres.NewPostRepository,
		postgres.NewHealthLogRepository,
		business.NewCollector,
		business.NewRecordBuilder,
		business.NewUseCase,
		workers.NewScheduler,
		deliveryhttp.NewHandlers,
		deliveryhttp.NewHealthHandler,
		deliveryhttp.NewRouter,
	),
	fx.Invoke(
		registerRoutes,
		startScheduler,
	),
)

// registerRoutes registers collection HTTP routes on the server
func registerRoutes(srv *server.Server, router *deliveryhttp.Router) {
	router.RegisterRoutes(srv.Router)
}

// startScheduler attaches the collection scheduler to the fx lifecycle
func startScheduler(lc fx.Lifecycle, scheduler *workers.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
}
