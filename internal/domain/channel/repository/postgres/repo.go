package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/entities"
	channelerrors "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/errors"
)

// Repository implements deps.ChannelRepository using PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL channel repository
func NewRepository(db *gorm.DB) deps.ChannelRepository {
	return &Repository{db: db}
}

// Create persists a new channel row
func (r *Repository) Create(ctx context.Context, channel *entities.Channel) (*entities.Channel, error) {
	model := &entities.ChannelModel{
		TelegramID:      channel.TelegramID,
		AccessHash:      channel.AccessHash,
		Username:        channel.Username,
		Title:           channel.Title,
		SubscriberCount: channel.SubscriberCount,
		IsActive:        true,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, channelerrors.ErrChannelAlreadyExists
		}
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return model.ToEntity(), nil
}

// GetByID returns a channel by its surrogate key
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Channel, error) {
	var model entities.ChannelModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channelerrors.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return model.ToEntity(), nil
}

// GetByUsername returns a channel by its unique username
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entities.Channel, error) {
	var model entities.ChannelModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channelerrors.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel by username: %w", err)
	}

	return model.ToEntity(), nil
}

// GetActive returns all channels with the active flag set
func (r *Repository) GetActive(ctx context.Context) ([]entities.Channel, error) {
	var models []entities.ChannelModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get active channels: %w", err)
	}

	channels := make([]entities.Channel, len(models))
	for i, model := range models {
		channels[i] = *model.ToEntity()
	}

	return channels, nil
}

// AdvanceCursor moves the resume cursor forward and stamps the collection
// time. The WHERE guard keeps the cursor monotonic even if two runs of the
// same channel ever interleave.
func (r *Repository) AdvanceCursor(ctx context.Context, id uint, messageID int, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ChannelModel{}).
		Where("id = ? AND last_collected_message_id <= ?", id, messageID).
		Updates(map[string]interface{}{
			"last_collected_message_id": messageID,
			"last_collected_at":         at,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to advance cursor: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the channel is gone or a newer cursor is already in
		// place; distinguish so callers can report the former.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&entities.ChannelModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check channel existence: %w", err)
		}
		if count == 0 {
			return channelerrors.ErrChannelNotFound
		}
	}

	return nil
}

// TouchCollectedAt stamps the collection time without moving the cursor
func (r *Repository) TouchCollectedAt(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ChannelModel{}).
		Where("id = ?", id).
		Update("last_collected_at", at)

	if result.Error != nil {
		return fmt.Errorf("failed to update last collected at: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return channelerrors.ErrChannelNotFound
	}

	return nil
}

// ResetCursor rewinds the resume cursor to zero (administrative reset)
func (r *Repository) ResetCursor(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ChannelModel{}).
		Where("id = ?", id).
		Update("last_collected_message_id", 0)

	if result.Error != nil {
		return fmt.Errorf("failed to reset cursor: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return channelerrors.ErrChannelNotFound
	}

	return nil
}

// UpdateInfo refreshes title and subscriber count from the source
func (r *Repository) UpdateInfo(ctx context.Context, id uint, title string, subscriberCount int) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ChannelModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":            title,
			"subscriber_count": subscriberCount,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update channel info: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return channelerrors.ErrChannelNotFound
	}

	return nil
}

// SetActive toggles collection for a channel without deleting history
func (r *Repository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.ChannelModel{}).
		Where("id = ?", id).
		Update("is_active", active)

	if result.Error != nil {
		return fmt.Errorf("failed to set channel active flag: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return channelerrors.ErrChannelNotFound
	}

	return nil
}

// Delete removes a channel row permanently
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.ChannelModel{}, id)

	if result.Error != nil {
		return fmt.Errorf("failed to delete channel: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return channelerrors.ErrChannelNotFound
	}

	return nil
}
