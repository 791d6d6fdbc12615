package deps

import (
	"context"
	"time"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/entities"
)

// ChannelRepository defines storage operations for monitored channels
type ChannelRepository interface {
	// Create persists a new channel row
	Create(ctx context.Context, channel *entities.Channel) (*entities.Channel, error)

	// GetByID returns a channel by its surrogate key
	GetByID(ctx context.Context, id uint) (*entities.Channel, error)

	// GetByUsername returns a channel by its unique username
	GetByUsername(ctx context.Context, username string) (*entities.Channel, error)

	// GetActive returns all channels with the active flag set
	GetActive(ctx context.Context) ([]entities.Channel, error)

	// AdvanceCursor moves the resume cursor forward and stamps the
	// collection time. The cursor never moves backwards through this call.
	AdvanceCursor(ctx context.Context, id uint, messageID int, at time.Time) error

	// TouchCollectedAt stamps the collection time without moving the cursor
	TouchCollectedAt(ctx context.Context, id uint, at time.Time) error

	// ResetCursor rewinds the resume cursor to zero (administrative reset)
	ResetCursor(ctx context.Context, id uint) error

	// UpdateInfo refreshes title and subscriber count from the source
	UpdateInfo(ctx context.Context, id uint, title string, subscriberCount int) error

	// SetActive toggles collection for a channel without deleting history
	SetActive(ctx context.Context, id uint, active bool) error

	// Delete removes a channel row permanently
	Delete(ctx context.Context, id uint) error
}
