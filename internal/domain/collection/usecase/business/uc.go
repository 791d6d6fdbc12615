package business

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	channeldeps "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/deps"
	channelentities "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/entities"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/entities"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/metrics"
)

// UseCase orchestrates collection runs: it drives the collector per
// channel, persists the results, advances resume cursors and records a
// health status transition for every attempt
type UseCase struct {
	channelRepo channeldeps.ChannelRepository
	postRepo    deps.PostRepository
	healthRepo  deps.HealthLogRepository
	collector   *Collector
	builder     *RecordBuilder
	producer    deps.EventProducer
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	now func() time.Time
}

// NewUseCase creates the collection orchestrator
func NewUseCase(
	channelRepo channeldeps.ChannelRepository,
	postRepo deps.PostRepository,
	healthRepo deps.HealthLogRepository,
	collector *Collector,
	builder *RecordBuilder,
	producer deps.EventProducer,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		channelRepo: channelRepo,
		postRepo:    postRepo,
		healthRepo:  healthRepo,
		collector:   collector,
		builder:     builder,
		producer:    producer,
		metrics:     m,
		logger:      logger.With().Str("component", "collection_usecase").Logger(),
		now:         time.Now,
	}
}

// channelOutcome is the internal result of one channel's collection
type channelOutcome struct {
	posts       int
	storageErrs []string
	runErr      error
}

// CollectChannel runs collection for a single channel by its surrogate
// key. Source failures are converted into a health log entry and an
// error report, never raised; the call is safe to retry.
func (u *UseCase) CollectChannel(ctx context.Context, channelID uint) *domain.CollectionReport {
	channel, err := u.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		u.logger.Error().Err(err).Uint("channel_id", channelID).Msg("Failed to resolve channel")
		return &domain.CollectionReport{
			Status: domain.RunStatusError,
			Errors: []domain.ChannelRunErrors{{ChannelID: channelID, Errors: []string{err.Error()}}},
		}
	}

	outcome := u.collectOne(ctx, channel)

	report := &domain.CollectionReport{
		ChannelsProcessed: 1,
		PostsCollected:    outcome.posts,
	}

	switch {
	case outcome.runErr != nil:
		report.Status = domain.RunStatusError
		report.Errors = []domain.ChannelRunErrors{{ChannelID: channel.ID, Errors: []string{outcome.runErr.Error()}}}
	case len(outcome.storageErrs) > 0:
		report.Status = domain.RunStatusPartial
		report.Errors = []domain.ChannelRunErrors{{ChannelID: channel.ID, Errors: outcome.storageErrs}}
	default:
		report.Status = domain.RunStatusCompleted
	}

	return report
}

// CollectAllActive runs collection for every active channel, one at a
// time. Channels are never abandoned because a sibling failed.
func (u *UseCase) CollectAllActive(ctx context.Context) *domain.CollectionReport {
	start := u.now()

	channels, err := u.channelRepo.GetActive(ctx)
	if err != nil {
		u.logger.Error().Err(err).Msg("Failed to get active channels")
		u.metrics.CollectionRunErrors.Inc()
		return &domain.CollectionReport{
			Status: domain.RunStatusError,
			Errors: []domain.ChannelRunErrors{{Errors: []string{err.Error()}}},
		}
	}

	u.metrics.ActiveChannels.Set(float64(len(channels)))

	if len(channels) == 0 {
		u.logger.Debug().Msg("No active channels, skipping collection run")
		return &domain.CollectionReport{Status: domain.RunStatusSkipped}
	}

	u.logger.Info().Int("channels_count", len(channels)).Msg("Collecting content from channels")

	report := &domain.CollectionReport{}
	failedChannels := 0

	for i := range channels {
		if ctx.Err() != nil {
			u.logger.Warn().
				Int("processed_channels", i).
				Int("total_channels", len(channels)).
				Msg("Collection run cancelled by context")
			break
		}

		channel := &channels[i]
		outcome := u.collectOne(ctx, channel)

		report.ChannelsProcessed++
		report.PostsCollected += outcome.posts

		if outcome.runErr != nil {
			failedChannels++
			report.Errors = append(report.Errors, domain.ChannelRunErrors{
				ChannelID: channel.ID,
				Errors:    []string{outcome.runErr.Error()},
			})
		} else if len(outcome.storageErrs) > 0 {
			report.Errors = append(report.Errors, domain.ChannelRunErrors{
				ChannelID: channel.ID,
				Errors:    outcome.storageErrs,
			})
		}
	}

	switch {
	case failedChannels == report.ChannelsProcessed && report.ChannelsProcessed > 0:
		report.Status = domain.RunStatusError
	case len(report.Errors) > 0:
		report.Status = domain.RunStatusPartial
	default:
		report.Status = domain.RunStatusCompleted
	}

	duration := u.now().Sub(start).Seconds()
	u.metrics.RecordRun(report.PostsCollected, duration)

	u.logger.Info().
		Int("channels_processed", report.ChannelsProcessed).
		Int("posts_collected", report.PostsCollected).
		Int("failed_channels", failedChannels).
		Str("status", string(report.Status)).
		Msg("Collection run completed")

	return report
}

// collectOne performs the full read-cursor / fetch / persist / write-cursor
// sequence for one channel and appends exactly one health log row
func (u *UseCase) collectOne(ctx context.Context, channel *channelentities.Channel) channelOutcome {
	minID := channel.LastCollectedMessageID

	result, err := u.collector.Collect(ctx, channel, minID)
	if err != nil {
		status := classifyFailure(err)
		u.appendHealth(ctx, channel.ID, status, err.Error())
		u.metrics.RecordHealth(string(status))
		u.metrics.CollectionRunErrors.Inc()
		u.logger.Error().Err(err).
			Uint("channel_id", channel.ID).
			Str("username", channel.Username).
			Str("health", string(status)).
			Msg("Channel collection failed")
		return channelOutcome{runErr: err}
	}

	outcome := channelOutcome{}
	collectedAt := u.now()

	for _, msg := range result.Messages {
		exists, err := u.postRepo.Exists(ctx, channel.ID, msg.TelegramMessageID)
		if err != nil {
			outcome.storageErrs = append(outcome.storageErrs,
				fmt.Sprintf("message %d: %v", msg.TelegramMessageID, err))
			u.metrics.StorageErrorsTotal.Inc()
			continue
		}
		if exists {
			u.metrics.PostsSkippedTotal.Inc()
			u.logger.Debug().
				Uint("channel_id", channel.ID).
				Int("message_id", msg.TelegramMessageID).
				Msg("Skipping already persisted message")
			continue
		}

		bundle := u.builder.Build(msg, channel.SubscriberCount, collectedAt)
		if err := u.postRepo.Save(ctx, bundle); err != nil {
			outcome.storageErrs = append(outcome.storageErrs,
				fmt.Sprintf("message %d: %v", msg.TelegramMessageID, err))
			u.metrics.StorageErrorsTotal.Inc()
			u.logger.Error().Err(err).
				Uint("channel_id", channel.ID).
				Int("message_id", msg.TelegramMessageID).
				Msg("Failed to persist post")
			continue
		}

		outcome.posts++
		u.publishEvent(ctx, channel, &msg, bundle)
	}

	// Advance the cursor over the full unfiltered fetch; an empty fetch
	// leaves the cursor alone but still stamps the attempt time.
	if result.MaxMessageID > 0 {
		if err := u.channelRepo.AdvanceCursor(ctx, channel.ID, result.MaxMessageID, collectedAt); err != nil {
			outcome.storageErrs = append(outcome.storageErrs, fmt.Sprintf("advance cursor: %v", err))
			u.logger.Error().Err(err).
				Uint("channel_id", channel.ID).
				Int("message_id", result.MaxMessageID).
				Msg("Failed to advance resume cursor")
		}
	} else {
		if err := u.channelRepo.TouchCollectedAt(ctx, channel.ID, collectedAt); err != nil {
			outcome.storageErrs = append(outcome.storageErrs, fmt.Sprintf("touch collected at: %v", err))
		}
	}

	// Storage errors stay out of the health classification: the source
	// was reachable, and conflating a storage bug with source
	// unavailability would mislead operators.
	u.appendHealth(ctx, channel.ID, domain.HealthStatusHealthy, "")
	u.metrics.RecordHealth(string(domain.HealthStatusHealthy))

	u.logger.Info().
		Uint("channel_id", channel.ID).
		Str("username", channel.Username).
		Int("posts_collected", outcome.posts).
		Int("storage_errors", len(outcome.storageErrs)).
		Int("max_message_id", result.MaxMessageID).
		Msg("Channel collection completed")

	return outcome
}

// appendHealth records one health log row for a collection attempt
func (u *UseCase) appendHealth(ctx context.Context, channelID uint, status domain.HealthStatus, errMsg string) {
	log := &entities.ChannelHealthLog{
		ChannelID:    channelID,
		Status:       status,
		ErrorMessage: errMsg,
	}
	if err := u.healthRepo.Append(ctx, log); err != nil {
		u.logger.Error().Err(err).
			Uint("channel_id", channelID).
			Str("status", string(status)).
			Msg("Failed to append health log")
	}
}

// publishEvent sends a post-collected event downstream, best effort
func (u *UseCase) publishEvent(ctx context.Context, channel *channelentities.Channel, msg *domain.MessageData, bundle *entities.PostBundle) {
	if u.producer == nil {
		return
	}

	event := &domain.PostCollectedEvent{
		ChannelID:         channel.ID,
		ChannelUsername:   channel.Username,
		TelegramMessageID: msg.TelegramMessageID,
		PublishedAt:       msg.PublishedAt,
		IsMediaOnly:       bundle.Content.IsMediaOnly,
		Views:             msg.Views,
		ReactionScore:     bundle.Engagement.ReactionScore,
		CollectedAt:       bundle.Engagement.CollectedAt,
	}

	if err := u.producer.PostCollected(ctx, event); err != nil {
		u.metrics.EventPublishErrors.Inc()
		u.logger.Error().Err(err).
			Uint("channel_id", channel.ID).
			Int("message_id", msg.TelegramMessageID).
			Msg("Failed to publish post-collected event")
		return
	}
	u.metrics.EventsPublishedTotal.Inc()
}

// classifyFailure maps a source-layer error onto a channel health
// status. First match wins; anything unclassified lands in
// inaccessible.
func classifyFailure(err error) domain.HealthStatus {
	switch {
	case domain.IsThrottle(err):
		return domain.HealthStatusRateLimited
	case domain.IsNotFound(err):
		return domain.HealthStatusInaccessible
	default:
		return domain.HealthStatusInaccessible
	}
}
