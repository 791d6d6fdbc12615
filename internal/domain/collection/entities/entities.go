package entities

import (
	"time"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
)

// Post is one collected channel message, unique on
// (channel_id, telegram_message_id)
type Post struct {
	ID                   uint      `gorm:"primaryKey"`
	ChannelID            uint      `gorm:"not null;uniqueIndex:uq_channel_message;index"`
	TelegramMessageID    int       `gorm:"not null;uniqueIndex:uq_channel_message"`
	PublishedAt          time.Time `gorm:"not null;index"`
	Forwarded            bool      `gorm:"not null;default:false"`
	ForwardFromChannelID int64     `gorm:"not null;default:0"`
	ForwardFromMessageID int       `gorm:"not null;default:0"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

func (Post) TableName() string {
	return "posts"
}

// PostContent holds the textual body of a post. IsMediaOnly is true
// when the trimmed text is empty.
type PostContent struct {
	ID          uint   `gorm:"primaryKey"`
	PostID      uint   `gorm:"not null;uniqueIndex"`
	Text        string `gorm:"type:text;not null;default:''"`
	Language    string `gorm:"size:16;default:''"`
	IsMediaOnly bool   `gorm:"not null;default:false"`
}

func (PostContent) TableName() string {
	return "post_contents"
}

// PostMedia is one media attachment row; Position preserves the
// attachment order within the message
type PostMedia struct {
	ID       uint   `gorm:"primaryKey"`
	PostID   uint   `gorm:"not null;index"`
	Position int    `gorm:"not null;default:0"`
	Type     string `gorm:"size:32;not null"`
	FileRef  string `gorm:"size:255;default:''"`
	Size     int64  `gorm:"not null;default:0"`
	Width    int    `gorm:"not null;default:0"`
	Height   int    `gorm:"not null;default:0"`
	Duration int    `gorm:"not null;default:0"`
	MimeType string `gorm:"size:128;default:''"`
}

func (PostMedia) TableName() string {
	return "post_media"
}

// EngagementMetrics is an append-only engagement snapshot taken once
// per collection run; a post accumulates one row per run it was seen in
type EngagementMetrics struct {
	ID                 uint      `gorm:"primaryKey"`
	PostID             uint      `gorm:"not null;index"`
	Views              int       `gorm:"not null;default:0"`
	Forwards           int       `gorm:"not null;default:0"`
	Replies            int       `gorm:"not null;default:0"`
	ReactionScore      float64   `gorm:"not null;default:0"`
	RelativeEngagement float64   `gorm:"not null;default:0"`
	CollectedAt        time.Time `gorm:"not null"`
}

func (EngagementMetrics) TableName() string {
	return "engagement_metrics"
}

// ReactionCount is one reaction kind within an engagement snapshot
type ReactionCount struct {
	ID                  uint   `gorm:"primaryKey"`
	EngagementMetricsID uint   `gorm:"not null;index"`
	Kind                string `gorm:"size:64;not null"`
	Count               int    `gorm:"not null;default:0"`
}

func (ReactionCount) TableName() string {
	return "reaction_counts"
}

// ChannelHealthLog is an append-only record of collection attempts
type ChannelHealthLog struct {
	ID           uint                `gorm:"primaryKey"`
	ChannelID    uint                `gorm:"not null;index"`
	Status       domain.HealthStatus `gorm:"size:32;not null"`
	ErrorMessage string              `gorm:"type:text;default:''"`
	CreatedAt    time.Time           `gorm:"autoCreateTime;index"`
}

func (ChannelHealthLog) TableName() string {
	return "channel_health_logs"
}

// PostBundle groups the rows persisted atomically for one message
type PostBundle struct {
	Post       Post
	Content    PostContent
	Media      []PostMedia
	Engagement EngagementMetrics
	Reactions  []ReactionCount
}
