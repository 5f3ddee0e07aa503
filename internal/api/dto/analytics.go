package dto

import (
	"time"
)

// ContentBriefDTO 报表中附带的内容摘要
type ContentBriefDTO struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Status      string `json:"status"`
}

// MetricsDTO 单条内容的派生指标
type MetricsDTO struct {
	TotalViews          int64   `json:"totalViews"`
	UniqueViews         int64   `json:"uniqueViews"`
	TotalLikes          int64   `json:"totalLikes"`
	TotalComments       int64   `json:"totalComments"`
	TotalShares         int64   `json:"totalShares"`
	EngagementRate      float64 `json:"engagementRate"`
	AverageViewDuration float64 `json:"averageViewDuration"`
}

type DemographicsDTO struct {
	AgeRanges    map[string]int64 `json:"ageRanges"`
	Genders      map[string]int64 `json:"genders"`
	TopCountries []*CountryDTO    `json:"topCountries"`
}

type CountryDTO struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

type HourViewsDTO struct {
	Hour  int   `json:"hour"`
	Views int64 `json:"views"`
}

type WeekdayViewsDTO struct {
	Day   string `json:"day"`
	Views int64  `json:"views"`
}

type TimeStatsDTO struct {
	PeakHours    []*HourViewsDTO    `json:"peakHours"`
	WeekdayStats []*WeekdayViewsDTO `json:"weekdayStats"`
}

type ViewEventDTO struct {
	ViewerID   *uint64   `json:"viewerId"`
	DeviceType string    `json:"deviceType"`
	Location   string    `json:"location"`
	AgeRange   string    `json:"ageRange,omitempty"`
	Gender     string    `json:"gender,omitempty"`
	Duration   int64     `json:"duration,omitempty"`
	ViewedAt   time.Time `json:"timestamp"`
}

type EngagementEventDTO struct {
	Type      string    `json:"type"`
	ViewerID  uint64    `json:"viewerId"`
	CreatedAt time.Time `json:"timestamp"`
}

// ContentAnalyticsDTO 单条内容的完整分析记录
type ContentAnalyticsDTO struct {
	ContentID    uint64                `json:"contentId"`
	CreatorID    uint64                `json:"creatorId"`
	Content      *ContentBriefDTO      `json:"content"`
	Views        []*ViewEventDTO       `json:"views"`
	Engagements  []*EngagementEventDTO `json:"engagements"`
	Metrics      *MetricsDTO           `json:"metrics"`
	Demographics *DemographicsDTO      `json:"demographics"`
	TimeStats    *TimeStatsDTO         `json:"timeStats"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// DashboardQueryDTO 仪表盘查询参数
type DashboardQueryDTO struct {
	Days int `form:"days" validate:"omitempty,min=0,max=3650"`
}

type TopContentDTO struct {
	Content        *ContentBriefDTO `json:"content"`
	Views          int64            `json:"views"`
	EngagementRate float64          `json:"engagementRate"`
}

type OverallMetricsDTO struct {
	TotalViews            int64            `json:"totalViews"`
	TotalEngagements      int64            `json:"totalEngagements"`
	AverageEngagementRate float64          `json:"averageEngagementRate"`
	ContentCount          int              `json:"contentCount"`
	TopPerforming         []*TopContentDTO `json:"topPerforming"`
}

// ViewTrendDTO 按自然日聚合的浏览量
type ViewTrendDTO struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type DashboardDTO struct {
	OverallMetrics *OverallMetricsDTO `json:"overallMetrics"`
	ViewTrends     []*ViewTrendDTO    `json:"viewTrends"`
}

// ReportQueryDTO 报表查询参数，日期支持 2006-01-02 或 RFC3339
type ReportQueryDTO struct {
	StartDate string `form:"startDate" validate:"omitempty,max=40"`
	EndDate   string `form:"endDate" validate:"omitempty,max=40"`
	ContentID uint64 `form:"contentId"`
}

type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ReportSummaryDTO struct {
	TotalContent          int     `json:"totalContent"`
	TotalViews            int64   `json:"totalViews"`
	TotalEngagements      int64   `json:"totalEngagements"`
	AverageEngagementRate float64 `json:"averageEngagementRate"`
}

// PeriodMetricsDTO 报表时间范围内发生的事件数
type PeriodMetricsDTO struct {
	Views          int64   `json:"views"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	EngagementRate float64 `json:"engagementRate"`
}

type ContentBreakdownDTO struct {
	Content      *ContentBriefDTO  `json:"content"`
	Metrics      *MetricsDTO       `json:"metrics"`
	Period       *PeriodMetricsDTO `json:"period,omitempty"`
	Demographics *DemographicsDTO  `json:"demographics"`
	TimeStats    *TimeStatsDTO     `json:"timeStats"`
}

type TimeAnalysisDTO struct {
	PeakHours          []*HourViewsDTO    `json:"peakHours"`
	WeekdayPerformance []*WeekdayViewsDTO `json:"weekdayPerformance"`
}

type ReportDTO struct {
	Period              *PeriodDTO             `json:"period"`
	Summary             *ReportSummaryDTO      `json:"summary"`
	ContentBreakdown    []*ContentBreakdownDTO `json:"contentBreakdown"`
	DemographicsSummary *DemographicsDTO       `json:"demographicsSummary"`
	TimeAnalysis        *TimeAnalysisDTO       `json:"timeAnalysis"`
}
