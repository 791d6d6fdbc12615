package app

import (
	"go.uber.org/fx"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/database"
	infrahttp "github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/http"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/kafka"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/logger"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/metrics"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/telegram"
)

// CreateApp creates the fx application with all dependencies
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		logger.Module,
		metrics.Module,
		database.Module,
		telegram.Module,
		kafka.Module,
		infrahttp.Module,
		// Domain modules
		channel.Module,
		collection.Module,
	)
}
