package entities

import "time"

// Channel represents a monitored Telegram channel
type Channel struct {
	ID              uint       `json:"id"`
	TelegramID      int64      `json:"telegramId"`
	AccessHash      int64      `json:"-"`
	Username        string     `json:"username"`
	Title           string     `json:"title"`
	SubscriberCount int        `json:"subscriberCount"`
	IsActive        bool       `json:"isActive"`
	// LastCollectedMessageID is the resume cursor: the highest message ID
	// observed for this channel. Zero means "never collected". It only
	// moves forward, except through an explicit administrative reset.
	LastCollectedMessageID int        `json:"lastCollectedMessageId"`
	LastCollectedAt        *time.Time `json:"lastCollectedAt"`
	CreatedAt              time.Time  `json:"createdAt"`
}
