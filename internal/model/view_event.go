package model

import (
	"time"
)

// ViewEvent 浏览事件，只追加不修改
type ViewEvent struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	ContentID  uint64    `gorm:"not null;index:idx_view_content_time" json:"contentId"`
	ViewerID   *uint64   `json:"viewerId"` // 匿名浏览为 NULL
	DeviceType string    `gorm:"type:varchar(32);not null;default:unknown" json:"deviceType"`
	Location   string    `gorm:"type:varchar(64);not null;default:unknown" json:"location"`
	AgeRange   string    `gorm:"type:varchar(16);not null;default:''" json:"ageRange,omitempty"`
	Gender     string    `gorm:"type:varchar(16);not null;default:''" json:"gender,omitempty"`
	Duration   int64     `gorm:"not null;default:0" json:"duration,omitempty"` // 秒，0 表示未知
	ViewedAt   time.Time `gorm:"not null;index:idx_view_content_time" json:"timestamp"`
}

func (ViewEvent) TableName() string {
	return "analytics_view_events"
}
