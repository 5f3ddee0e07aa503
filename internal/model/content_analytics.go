package model

import (
	"time"
)

// ContentAnalytics 单个内容的分析聚合记录，每个 content_id 有且仅有一条
type ContentAnalytics struct {
	ID        uint64 `gorm:"primaryKey" json:"id"`
	ContentID uint64 `gorm:"not null;uniqueIndex:idx_analytics_content" json:"contentId"`
	CreatorID uint64 `gorm:"not null;index:idx_analytics_creator" json:"creatorId"`

	TotalViews          int64   `gorm:"not null;default:0" json:"totalViews"`
	UniqueViews         int64   `gorm:"not null;default:0" json:"uniqueViews"`
	TotalLikes          int64   `gorm:"not null;default:0" json:"totalLikes"`
	TotalComments       int64   `gorm:"not null;default:0" json:"totalComments"`
	TotalShares         int64   `gorm:"not null;default:0" json:"totalShares"`
	EngagementRate      float64 `gorm:"not null;default:0" json:"engagementRate"`
	TotalViewDuration   int64   `gorm:"not null;default:0" json:"-"` // 秒
	TimedViews          int64   `gorm:"not null;default:0" json:"-"` // 携带时长的浏览次数
	AverageViewDuration float64 `gorm:"not null;default:0" json:"averageViewDuration"`

	Demographics Demographics `gorm:"type:json;serializer:json" json:"demographics"`
	TimeStats    TimeStats    `gorm:"type:json;serializer:json" json:"timeStats"`

	LastEventAt time.Time `gorm:"not null;index:idx_analytics_last_event" json:"lastEventAt"`
	CreatedAt   time.Time `gorm:"index:idx_analytics_created" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 事件日志，仅在单条查询时加载
	Views       []ViewEvent       `gorm:"foreignKey:ContentID;references:ContentID" json:"views,omitempty"`
	Engagements []EngagementEvent `gorm:"foreignKey:ContentID;references:ContentID" json:"engagements,omitempty"`
}

func (ContentAnalytics) TableName() string {
	return "content_analytics"
}

// TotalEngagements 点赞、评论、分享之和
func (s *ContentAnalytics) TotalEngagements() int64 {
	return s.TotalLikes + s.TotalComments + s.TotalShares
}

// Demographics 受众画像汇总
type Demographics struct {
	AgeRanges    map[string]int64 `json:"ageRanges"`
	Genders      map[string]int64 `json:"genders"`
	TopCountries []CountryCount   `json:"topCountries"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// TimeStats 时段分布
type TimeStats struct {
	PeakHours    []HourViews    `json:"peakHours"`
	WeekdayStats []WeekdayViews `json:"weekdayStats"`
}

type HourViews struct {
	Hour  int   `json:"hour"`
	Views int64 `json:"views"`
}

type WeekdayViews struct {
	Day   string `json:"day"`
	Views int64  `json:"views"`
}
