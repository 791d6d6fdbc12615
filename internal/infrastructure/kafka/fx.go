package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/metrics"
)

// Module provides the Kafka event producer for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewEventProducerFx),
)

// NewEventProducerFx creates the event producer with lifecycle hooks for
// fx DI. Empty broker list disables publishing entirely.
func NewEventProducerFx(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (deps.EventProducer, error) {
	if len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka brokers not configured, event publishing disabled")
		return NoopProducer{}, nil
	}

	producer, err := NewProducer(cfg, m, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})

	return producer, nil
}
