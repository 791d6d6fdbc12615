package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/metrics"
)

// Producer publishes post-collected events to Kafka
type Producer struct {
	writer  *kafka.Writer
	topic   string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewProducer creates a Kafka producer for post-collected events
func NewProducer(cfg *config.KafkaConfig, m *metrics.Metrics, logger zerolog.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka producer initialized")

	return &Producer{
		writer:  writer,
		topic:   cfg.Topic,
		metrics: m,
		logger:  logger.With().Str("component", "kafka_producer").Logger(),
	}, nil
}

// PostCollected publishes one post-collected event. The channel ID is
// the partition key, so per-channel ordering is preserved.
func (p *Producer) PostCollected(ctx context.Context, event *domain.PostCollectedEvent) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal post collected event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(strconv.FormatUint(uint64(event.ChannelID), 10)),
		Value: value,
	})
	if err != nil {
		p.metrics.EventPublishErrors.Inc()
		p.logger.Error().Err(err).
			Uint("channel_id", event.ChannelID).
			Int("message_id", event.TelegramMessageID).
			Msg("Failed to publish post collected event")
		return fmt.Errorf("failed to publish post collected event: %w", err)
	}

	p.metrics.EventsPublishedTotal.Inc()
	p.logger.Debug().
		Uint("channel_id", event.ChannelID).
		Int("message_id", event.TelegramMessageID).
		Msg("Post collected event published")

	return nil
}

// Close flushes and closes the underlying writer
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed")
	return nil
}

// NoopProducer is used when no Kafka brokers are configured. Events are
// dropped silently; collection itself never depends on publishing.
type NoopProducer struct{}

// PostCollected discards the event
func (NoopProducer) PostCollected(ctx context.Context, event *domain.PostCollectedEvent) error {
	return nil
}

var (
	_ deps.EventProducer = (*Producer)(nil)
	_ deps.EventProducer = NoopProducer{}
)
