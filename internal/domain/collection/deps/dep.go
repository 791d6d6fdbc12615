package deps

import (
	"context"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/entities"
)

// SourceClient defines the operations this pipeline needs from the
// Telegram transport. Every call is rate limited and retried before it
// reaches the wire; errors come back as the typed variants in the
// domain package so callers classify by type, never by message text.
type SourceClient interface {
	// Connect establishes the MTProto session. Idempotent when already
	// connected; returns a ConnectionError when the transport cannot be
	// established.
	Connect(ctx context.Context) error

	// IsConnected reports whether the session is up
	IsConnected() bool

	// GetChannel resolves a channel by username. Returns (nil, nil) when
	// the channel does not exist or is inaccessible - validation flows
	// treat access failures as "not found", not as errors.
	GetChannel(ctx context.Context, username string) (*domain.ChannelInfo, error)

	// GetMessages fetches up to limit messages with ID strictly greater
	// than minID. Ordering is source-defined. Deleted messages appear as
	// nil entries; the collector drops them.
	GetMessages(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error)
}

// PostRepository defines storage operations for collected posts
type PostRepository interface {
	// Exists reports whether a post with the given idempotency key
	// (channel id + telegram message id) is already persisted
	Exists(ctx context.Context, channelID uint, telegramMessageID int) (bool, error)

	// Save persists one post bundle atomically: post, content, media,
	// engagement snapshot and reaction rows all commit or none do
	Save(ctx context.Context, bundle *entities.PostBundle) error
}

// HealthLogRepository defines storage for the append-only channel health log
type HealthLogRepository interface {
	// Append records one health log row; rows are never mutated
	Append(ctx context.Context, log *entities.ChannelHealthLog) error

	// Latest returns the most recent health log row for a channel, or
	// nil when the channel was never attempted
	Latest(ctx context.Context, channelID uint) (*entities.ChannelHealthLog, error)
}

// EventProducer publishes post-collected events downstream. Publishing
// is best-effort; a failed publish never fails the collection run.
type EventProducer interface {
	PostCollected(ctx context.Context, event *domain.PostCollectedEvent) error
}
