package mongo

import (
	"Lumen/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsDoc 单个内容的分析文档，事件日志与计数在同一文档内
type AnalyticsDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ContentID    uint64             `bson:"content_id"`
	CreatorID    uint64             `bson:"creator_id"`
	Views        []ViewDoc          `bson:"views,omitempty"`
	Engagements  []EngagementDoc    `bson:"engagements,omitempty"`
	ViewerIDs    []uint64           `bson:"viewer_ids,omitempty"` // 去重观众集合
	Metrics      MetricsDoc         `bson:"metrics"`
	Demographics DemographicsDoc    `bson:"demographics"`
	TimeStats    TimeStatsDoc       `bson:"time_stats"`
	LastEventAt  time.Time          `bson:"last_event_at"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type MetricsDoc struct {
	TotalViews          int64   `bson:"total_views"`
	UniqueViews         int64   `bson:"unique_views"`
	TotalLikes          int64   `bson:"total_likes"`
	TotalComments       int64   `bson:"total_comments"`
	TotalShares         int64   `bson:"total_shares"`
	EngagementRate      float64 `bson:"engagement_rate"`
	TotalViewDuration   int64   `bson:"total_view_duration"`
	TimedViews          int64   `bson:"timed_views"`
	AverageViewDuration float64 `bson:"average_view_duration"`
}

type ViewDoc struct {
	ViewerID   *uint64   `bson:"viewer_id"`
	DeviceType string    `bson:"device_type"`
	Location   string    `bson:"location"`
	AgeRange   string    `bson:"age_range,omitempty"`
	Gender     string    `bson:"gender,omitempty"`
	Duration   int64     `bson:"duration,omitempty"`
	ViewedAt   time.Time `bson:"viewed_at"`
}

type EngagementDoc struct {
	Type      string    `bson:"type"`
	ViewerID  uint64    `bson:"viewer_id"`
	CreatedAt time.Time `bson:"created_at"`
}

type DemographicsDoc struct {
	AgeRanges    map[string]int64     `bson:"age_ranges"`
	Genders      map[string]int64     `bson:"genders"`
	TopCountries []model.CountryCount `bson:"top_countries"`
}

type TimeStatsDoc struct {
	PeakHours    []model.HourViews    `bson:"peak_hours"`
	WeekdayStats []model.WeekdayViews `bson:"weekday_stats"`
}

func newViewDoc(v *model.ViewEvent) ViewDoc {
	return ViewDoc{
		ViewerID:   v.ViewerID,
		DeviceType: v.DeviceType,
		Location:   v.Location,
		AgeRange:   v.AgeRange,
		Gender:     v.Gender,
		Duration:   v.Duration,
		ViewedAt:   v.ViewedAt,
	}
}

func (d ViewDoc) toModel(contentID uint64) model.ViewEvent {
	return model.ViewEvent{
		ContentID:  contentID,
		ViewerID:   d.ViewerID,
		DeviceType: d.DeviceType,
		Location:   d.Location,
		AgeRange:   d.AgeRange,
		Gender:     d.Gender,
		Duration:   d.Duration,
		ViewedAt:   d.ViewedAt,
	}
}

// toModel 文档转换为统一的分析模型，事件序号按数组下标从 1 开始
func (d *AnalyticsDoc) toModel() *model.ContentAnalytics {
	m := &model.ContentAnalytics{
		ContentID:           d.ContentID,
		CreatorID:           d.CreatorID,
		TotalViews:          d.Metrics.TotalViews,
		UniqueViews:         d.Metrics.UniqueViews,
		TotalLikes:          d.Metrics.TotalLikes,
		TotalComments:       d.Metrics.TotalComments,
		TotalShares:         d.Metrics.TotalShares,
		EngagementRate:      d.Metrics.EngagementRate,
		TotalViewDuration:   d.Metrics.TotalViewDuration,
		TimedViews:          d.Metrics.TimedViews,
		AverageViewDuration: d.Metrics.AverageViewDuration,
		Demographics: model.Demographics{
			AgeRanges:    d.Demographics.AgeRanges,
			Genders:      d.Demographics.Genders,
			TopCountries: d.Demographics.TopCountries,
		},
		TimeStats: model.TimeStats{
			PeakHours:    d.TimeStats.PeakHours,
			WeekdayStats: d.TimeStats.WeekdayStats,
		},
		LastEventAt: d.LastEventAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for i, v := range d.Views {
		view := v.toModel(d.ContentID)
		view.ID = uint64(i + 1)
		m.Views = append(m.Views, view)
	}
	for i, e := range d.Engagements {
		m.Engagements = append(m.Engagements, model.EngagementEvent{
			ID:        uint64(i + 1),
			ContentID: d.ContentID,
			Type:      e.Type,
			ViewerID:  e.ViewerID,
			CreatedAt: e.CreatedAt,
		})
	}
	return m
}
