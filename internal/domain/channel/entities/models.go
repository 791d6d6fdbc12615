package entities

import (
	"time"
)

// ChannelModel is a GORM model for the channels table
type ChannelModel struct {
	ID                     uint       `gorm:"primaryKey"`
	TelegramID             int64      `gorm:"not null;uniqueIndex"`
	AccessHash             int64      `gorm:"not null;default:0"`
	Username               string     `gorm:"not null;size:255;uniqueIndex"`
	Title                  string     `gorm:"size:255;default:''"`
	SubscriberCount        int        `gorm:"not null;default:0"`
	IsActive               bool       `gorm:"not null;default:true;index"`
	LastCollectedMessageID int        `gorm:"not null;default:0"`
	LastCollectedAt        *time.Time
	CreatedAt              time.Time `gorm:"autoCreateTime"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`
}

func (ChannelModel) TableName() string {
	return "channels"
}

// ToEntity converts DB model to domain entity
func (m *ChannelModel) ToEntity() *Channel {
	return &Channel{
		ID:                     m.ID,
		TelegramID:             m.TelegramID,
		AccessHash:             m.AccessHash,
		Username:               m.Username,
		Title:                  m.Title,
		SubscriberCount:        m.SubscriberCount,
		IsActive:               m.IsActive,
		LastCollectedMessageID: m.LastCollectedMessageID,
		LastCollectedAt:        m.LastCollectedAt,
		CreatedAt:              m.CreatedAt,
	}
}
