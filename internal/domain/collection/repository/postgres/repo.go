package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/entities"
)

// PostRepository implements deps.PostRepository using PostgreSQL
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *gorm.DB) deps.PostRepository {
	return &PostRepository{db: db}
}

// Exists reports whether a post with the given idempotency key is
// already persisted
func (r *PostRepository) Exists(ctx context.Context, channelID uint, telegramMessageID int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Post{}).
		Where("channel_id = ? AND telegram_message_id = ?", channelID, telegramMessageID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}

	return count > 0, nil
}

// Save persists one post bundle atomically. The unique index on
// (channel_id, telegram_message_id) is the second line of defense
// behind the caller's Exists check.
func (r *PostRepository) Save(ctx context.Context, bundle *entities.PostBundle) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bundle.Post).Error; err != nil {
			return fmt.Errorf("create post: %w", err)
		}

		bundle.Content.PostID = bundle.Post.ID
		if err := tx.Create(&bundle.Content).Error; err != nil {
			return fmt.Errorf("create post content: %w", err)
		}

		for i := range bundle.Media {
			bundle.Media[i].PostID = bundle.Post.ID
		}
		if len(bundle.Media) > 0 {
			if err := tx.Create(&bundle.Media).Error; err != nil {
				return fmt.Errorf("create post media: %w", err)
			}
		}

		bundle.Engagement.PostID = bundle.Post.ID
		if err := tx.Create(&bundle.Engagement).Error; err != nil {
			return fmt.Errorf("create engagement metrics: %w", err)
		}

		for i := range bundle.Reactions {
			bundle.Reactions[i].EngagementMetricsID = bundle.Engagement.ID
		}
		if len(bundle.Reactions) > 0 {
			if err := tx.Create(&bundle.Reactions).Error; err != nil {
				return fmt.Errorf("create reaction counts: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save post bundle: %w", err)
	}

	return nil
}

// HealthLogRepository implements deps.HealthLogRepository using PostgreSQL
type HealthLogRepository struct {
	db *gorm.DB
}

// NewHealthLogRepository creates a new PostgreSQL health log repository
func NewHealthLogRepository(db *gorm.DB) deps.HealthLogRepository {
	return &HealthLogRepository{db: db}
}

// Append records one health log row
func (r *HealthLogRepository) Append(ctx context.Context, log *entities.ChannelHealthLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to append health log: %w", err)
	}
	return nil
}

// Latest returns the most recent health log row for a channel, or nil
// when the channel was never attempted
func (r *HealthLogRepository) Latest(ctx context.Context, channelID uint) (*entities.ChannelHealthLog, error) {
	var log entities.ChannelHealthLog
	if err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("id DESC").
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest health log: %w", err)
	}

	return &log, nil
}
