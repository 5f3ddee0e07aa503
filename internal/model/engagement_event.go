package model

import (
	"time"
)

// EngagementEvent 互动事件（like / comment / share）
type EngagementEvent struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	ContentID uint64    `gorm:"not null;index:idx_engagement_content" json:"contentId"`
	Type      string    `gorm:"type:varchar(16);not null" json:"type"`
	ViewerID  uint64    `gorm:"not null" json:"viewerId"`
	CreatedAt time.Time `gorm:"not null" json:"timestamp"`
}

func (EngagementEvent) TableName() string {
	return "analytics_engagement_events"
}
