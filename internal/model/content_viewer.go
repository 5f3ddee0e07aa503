package model

import (
	"time"
)

// ContentViewer 已计入 unique_views 的观众，(content_id, viewer_id) 唯一
type ContentViewer struct {
	ContentID     uint64    `gorm:"primaryKey" json:"contentId"`
	ViewerID      uint64    `gorm:"primaryKey" json:"viewerId"`
	FirstViewedAt time.Time `gorm:"not null" json:"firstViewedAt"`
}

func (ContentViewer) TableName() string {
	return "analytics_viewers"
}
