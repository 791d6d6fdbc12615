package channel

import (
	"go.uber.org/fx"

	deliveryhttp "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/delivery/http"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/repository/postgres"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/usecase/business"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/http/server"
)

// Module provides channel domain components for fx DI
var Module = fx.Module("channel",
	fx.Provide(
		postgres.NewRepository,
		business.NewUseCase,
		deliveryhttp.NewHandlers,
		deliveryhttp.NewRouter,
	),
	fx.Invoke(registerRoutes),
)

// registerRoutes registers channel HTTP routes on the server
func registerRoutes(srv *server.Server, router *deliveryhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
