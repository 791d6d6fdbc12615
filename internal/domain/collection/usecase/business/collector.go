package business

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	channelentities "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/entities"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
)

// Collector fetches raw messages for one channel, applies the rolling
// content window and normalizes what remains
type Collector struct {
	source     deps.SourceClient
	window     time.Duration
	fetchLimit int
	logger     zerolog.Logger

	now func() time.Time
}

// NewCollector creates a collector from configuration
func NewCollector(source deps.SourceClient, cfg *config.CollectorConfig, logger zerolog.Logger) *Collector {
	return &Collector{
		source:     source,
		window:     time.Duration(cfg.WindowHours) * time.Hour,
		fetchLimit: cfg.FetchLimit,
		logger:     logger.With().Str("component", "collector").Logger(),
		now:        time.Now,
	}
}

// Collect fetches messages newer than minID for the channel and returns
// the normalized in-window records. MaxMessageID in the result reflects
// the full unfiltered fetch so the caller can advance the resume cursor
// even when the window discarded everything.
func (c *Collector) Collect(ctx context.Context, channel *channelentities.Channel, minID int) (*domain.CollectionResult, error) {
	if minID < 0 {
		minID = 0
	}

	peer := domain.ChannelPeer{TelegramID: channel.TelegramID, AccessHash: channel.AccessHash}

	raw, err := c.source.GetMessages(ctx, peer, c.fetchLimit, minID)
	if err != nil {
		c.logger.Error().Err(err).
			Uint("channel_id", channel.ID).
			Int64("telegram_id", channel.TelegramID).
			Int("limit", c.fetchLimit).
			Int("min_id", minID).
			Msg("failed to get channel messages")
		return nil, fmt.Errorf("get messages for channel %d: %w", channel.ID, err)
	}

	maxMessageID := 0
	cutoff := c.now().Add(-c.window)

	var messages []domain.MessageData
	for _, msg := range raw {
		// Deleted messages come back as empty placeholders from the
		// transport; only those are dropped. A message with empty text
		// but media attached is a valid media-only post and stays.
		if msg == nil {
			continue
		}

		if msg.ID > maxMessageID {
			maxMessageID = msg.ID
		}

		if msg.Date.Before(cutoff) {
			continue
		}

		messages = append(messages, normalize(msg, channel.ID))
	}

	c.logger.Debug().
		Uint("channel_id", channel.ID).
		Int("fetched", len(raw)).
		Int("in_window", len(messages)).
		Int("max_message_id", maxMessageID).
		Msg("collected channel messages")

	return &domain.CollectionResult{
		Messages:     messages,
		MaxMessageID: maxMessageID,
		Count:        len(messages),
	}, nil
}

// normalize converts a raw source message into a message data record
// with all optional fields defaulted
func normalize(msg *domain.RawMessage, channelID uint) domain.MessageData {
	media := make([]domain.MediaItem, len(msg.Media))
	copy(media, msg.Media)

	reactions := make(map[string]int, len(msg.Reactions))
	for kind, count := range msg.Reactions {
		reactions[kind] = count
	}

	return domain.MessageData{
		ChannelID:            channelID,
		TelegramMessageID:    msg.ID,
		PublishedAt:          msg.Date,
		Text:                 msg.Text,
		Media:                media,
		Forwarded:            msg.Forwarded,
		ForwardFromChannelID: msg.ForwardFromChannelID,
		ForwardFromMessageID: msg.ForwardFromMessageID,
		Views:                msg.Views,
		Forwards:             msg.Forwards,
		Replies:              msg.Replies,
		Reactions:            reactions,
	}
}
