package service

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/model"

	"github.com/jinzhu/copier"
)

func toMetricsDTO(record *model.ContentAnalytics) *dto.MetricsDTO {
	metrics := &dto.MetricsDTO{}
	_ = copier.Copy(metrics, record)
	return metrics
}

func toContentBrief(contentID uint64, content *model.Content) *dto.ContentBriefDTO {
	brief := &dto.ContentBriefDTO{ID: contentID}
	if content != nil {
		_ = copier.Copy(brief, content)
	}
	return brief
}

func toDemographicsDTO(d model.Demographics) *dto.DemographicsDTO {
	res := &dto.DemographicsDTO{
		AgeRanges:    make(map[string]int64, len(d.AgeRanges)),
		Genders:      make(map[string]int64, len(d.Genders)),
		TopCountries: make([]*dto.CountryDTO, 0, len(d.TopCountries)),
	}
	for k, v := range d.AgeRanges {
		res.AgeRanges[k] = v
	}
	for k, v := range d.Genders {
		res.Genders[k] = v
	}
	for _, c := range d.TopCountries {
		res.TopCountries = append(res.TopCountries, &dto.CountryDTO{Country: c.Country, Count: c.Count})
	}
	return res
}

func toTimeStatsDTO(t model.TimeStats) *dto.TimeStatsDTO {
	res := &dto.TimeStatsDTO{
		PeakHours:    make([]*dto.HourViewsDTO, 0, len(t.PeakHours)),
		WeekdayStats: make([]*dto.WeekdayViewsDTO, 0, len(t.WeekdayStats)),
	}
	for _, h := range t.PeakHours {
		res.PeakHours = append(res.PeakHours, &dto.HourViewsDTO{Hour: h.Hour, Views: h.Views})
	}
	for _, w := range t.WeekdayStats {
		res.WeekdayStats = append(res.WeekdayStats, &dto.WeekdayViewsDTO{Day: w.Day, Views: w.Views})
	}
	return res
}

func toContentAnalyticsDTO(record *model.ContentAnalytics, content *model.Content) *dto.ContentAnalyticsDTO {
	res := &dto.ContentAnalyticsDTO{
		ContentID:    record.ContentID,
		CreatorID:    record.CreatorID,
		Content:      toContentBrief(record.ContentID, content),
		Views:        make([]*dto.ViewEventDTO, 0, len(record.Views)),
		Engagements:  make([]*dto.EngagementEventDTO, 0, len(record.Engagements)),
		Metrics:      toMetricsDTO(record),
		Demographics: toDemographicsDTO(record.Demographics),
		TimeStats:    toTimeStatsDTO(record.TimeStats),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	for i := range record.Views {
		item := &dto.ViewEventDTO{}
		_ = copier.Copy(item, &record.Views[i])
		res.Views = append(res.Views, item)
	}
	for i := range record.Engagements {
		item := &dto.EngagementEventDTO{}
		_ = copier.Copy(item, &record.Engagements[i])
		res.Engagements = append(res.Engagements, item)
	}
	return res
}

// engagementRate 互动率百分比，浏览量为 0 时返回 0
func engagementRate(engagements, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(engagements) / float64(views) * 100
}
