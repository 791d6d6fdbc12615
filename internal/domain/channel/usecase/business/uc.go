package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/entities"
	channelerrors "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/errors"
	collectiondeps "github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	collectionentities "github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/entities"
)

// UseCase implements channel management: validation against the source,
// activation, removal and administrative cursor resets
type UseCase struct {
	channelRepo deps.ChannelRepository
	source      collectiondeps.SourceClient
	healthRepo  collectiondeps.HealthLogRepository
	logger      zerolog.Logger
}

// NewUseCase creates a new channel management use case
func NewUseCase(
	channelRepo deps.ChannelRepository,
	source collectiondeps.SourceClient,
	healthRepo collectiondeps.HealthLogRepository,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		channelRepo: channelRepo,
		source:      source,
		healthRepo:  healthRepo,
		logger:      logger.With().Str("component", "channel_usecase").Logger(),
	}
}

// AddChannel validates a channel against the source and persists it.
// The username may carry a leading @ or a t.me/ prefix.
func (u *UseCase) AddChannel(ctx context.Context, username string) (*entities.Channel, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, channelerrors.ErrInvalidUsername
	}

	if existing, err := u.channelRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, channelerrors.ErrChannelAlreadyExists
	}

	info, err := u.source.GetChannel(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to validate channel %q: %w", username, err)
	}
	if info == nil {
		return nil, channelerrors.ErrChannelNotFound
	}

	channel, err := u.channelRepo.Create(ctx, &entities.Channel{
		TelegramID:      info.Peer.TelegramID,
		AccessHash:      info.Peer.AccessHash,
		Username:        username,
		Title:           info.Title,
		SubscriberCount: info.SubscriberCount,
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info().
		Uint("channel_id", channel.ID).
		Str("username", username).
		Str("title", info.Title).
		Int("subscribers", info.SubscriberCount).
		Msg("Channel added")

	return channel, nil
}

// RefreshChannel re-resolves a channel and updates title and subscriber
// count. An inaccessible channel is not an error here; it stays as-is
// until the next collection run classifies it.
func (u *UseCase) RefreshChannel(ctx context.Context, id uint) (*entities.Channel, error) {
	channel, err := u.channelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	info, err := u.source.GetChannel(ctx, channel.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh channel %q: %w", channel.Username, err)
	}
	if info == nil {
		u.logger.Warn().
			Uint("channel_id", id).
			Str("username", channel.Username).
			Msg("Channel no longer resolvable, leaving info unchanged")
		return channel, nil
	}

	if err := u.channelRepo.UpdateInfo(ctx, id, info.Title, info.SubscriberCount); err != nil {
		return nil, err
	}

	channel.Title = info.Title
	channel.SubscriberCount = info.SubscriberCount
	return channel, nil
}

// ListActive returns all channels with collection enabled
func (u *UseCase) ListActive(ctx context.Context) ([]entities.Channel, error) {
	return u.channelRepo.GetActive(ctx)
}

// DeactivateChannel disables collection without deleting any history
func (u *UseCase) DeactivateChannel(ctx context.Context, id uint) error {
	if err := u.channelRepo.SetActive(ctx, id, false); err != nil {
		return err
	}

	u.logger.Info().Uint("channel_id", id).Msg("Channel deactivated")
	return nil
}

// RemoveChannel hard-deletes a channel and appends a final removed
// health log row so the history explains the disappearance
func (u *UseCase) RemoveChannel(ctx context.Context, id uint) error {
	u.appendRemoved(ctx, id)

	if err := u.channelRepo.Delete(ctx, id); err != nil {
		return err
	}

	u.logger.Info().Uint("channel_id", id).Msg("Channel removed")
	return nil
}

// ResetCursor rewinds the resume cursor to zero. This is the only
// sanctioned way to move the cursor backwards; the next run refetches
// the window from scratch and relies on the idempotent skip.
func (u *UseCase) ResetCursor(ctx context.Context, id uint) error {
	if err := u.channelRepo.ResetCursor(ctx, id); err != nil {
		return err
	}

	u.logger.Warn().Uint("channel_id", id).Msg("Resume cursor administratively reset")
	return nil
}

func (u *UseCase) appendRemoved(ctx context.Context, id uint) {
	log := &collectionentities.ChannelHealthLog{
		ChannelID: id,
		Status:    domain.HealthStatusRemoved,
	}
	if err := u.healthRepo.Append(ctx, log); err != nil {
		u.logger.Error().Err(err).Uint("channel_id", id).Msg("Failed to append removed health log")
	}
}

// NormalizeUsername strips @ and t.me prefixes and lowercases the handle
func NormalizeUsername(username string) string {
	username = strings.TrimSpace(username)
	username = strings.TrimPrefix(username, "https://")
	username = strings.TrimPrefix(username, "http://")
	username = strings.TrimPrefix(username, "t.me/")
	username = strings.TrimPrefix(username, "@")
	return strings.ToLower(username)
}
