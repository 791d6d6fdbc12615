package domain

import "time"

// HealthStatus describes the outcome of a collection attempt for a channel
type HealthStatus string

const (
	HealthStatusHealthy      HealthStatus = "healthy"
	HealthStatusRateLimited  HealthStatus = "rate_limited"
	HealthStatusInaccessible HealthStatus = "inaccessible"
	HealthStatusRemoved      HealthStatus = "removed"
	HealthStatusUnknown      HealthStatus = "unknown"
)

// RunStatus describes the aggregate outcome of a collection run
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusError     RunStatus = "error"
	RunStatusSkipped   RunStatus = "skipped"
)

// ChannelPeer identifies a channel on the Telegram side.
// AccessHash is captured when the channel is first resolved and stored
// alongside the channel row, so later history fetches do not need to
// re-resolve the username.
type ChannelPeer struct {
	TelegramID int64
	AccessHash int64
}

// ChannelInfo represents detailed information about a Telegram channel
// as returned by the source client during validation
type ChannelInfo struct {
	Peer            ChannelPeer
	Username        string
	Title           string
	About           string
	SubscriberCount int
	IsVerified      bool
	IsRestricted    bool
}

// MediaItem describes a single media attachment of a message
type MediaItem struct {
	Type     string `json:"type"` // photo, video, audio, animation, document
	FileRef  string `json:"file_ref"`
	Size     int64  `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Duration int    `json:"duration"` // seconds, 0 for stills
	MimeType string `json:"mime_type"`
}

// RawMessage is a message as returned by the source client, before
// window filtering and normalization. Deleted messages come back from
// the transport as empty placeholders; those are represented as nil
// entries in the slice the client returns.
type RawMessage struct {
	ID                   int
	Date                 time.Time
	Text                 string
	Media                []MediaItem
	Forwarded            bool
	ForwardFromChannelID int64
	ForwardFromMessageID int
	Views                int
	Forwards             int
	Replies              int
	Reactions            map[string]int
}

// MessageData is a normalized message record produced by the collector
type MessageData struct {
	ChannelID            uint
	TelegramMessageID    int
	PublishedAt          time.Time
	Text                 string
	Media                []MediaItem
	Forwarded            bool
	ForwardFromChannelID int64
	ForwardFromMessageID int
	Views                int
	Forwards             int
	Replies              int
	Reactions            map[string]int
}

// CollectionResult is the outcome of a single collector fetch.
// MaxMessageID is the highest message ID across the full unfiltered
// fetch (0 when the fetch returned nothing); it deliberately includes
// messages discarded by the content window, so the resume cursor can
// still advance past old-but-newly-visible messages.
type CollectionResult struct {
	Messages     []MessageData
	MaxMessageID int
	Count        int
}

// ChannelRunErrors lists per-message errors accumulated for one channel
// during a collection run
type ChannelRunErrors struct {
	ChannelID uint     `json:"channel_id"`
	Errors    []string `json:"errors"`
}

// CollectionReport is the structured result returned to the scheduling
// collaborator for both single-channel and all-channels invocations
type CollectionReport struct {
	Status            RunStatus          `json:"status"`
	ChannelsProcessed int                `json:"channels_processed"`
	PostsCollected    int                `json:"posts_collected"`
	Errors            []ChannelRunErrors `json:"errors"`
}

// PostCollectedEvent is published downstream after a post is persisted
type PostCollectedEvent struct {
	ChannelID         uint      `json:"channel_id"`
	ChannelUsername   string    `json:"channel_username"`
	TelegramMessageID int       `json:"telegram_message_id"`
	PublishedAt       time.Time `json:"published_at"`
	IsMediaOnly       bool      `json:"is_media_only"`
	Views             int       `json:"views"`
	ReactionScore     float64   `json:"reaction_score"`
	CollectedAt       time.Time `json:"collected_at"`
}
