package service

import (
	"Lumen/internal/api/config"
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/repository"
	"context"
	"sort"
	"time"
)

// 周一开始的星期顺序
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// AnalyticsRollupService 从浏览日志重算受众画像与时段分布
type AnalyticsRollupService interface {
	RefreshRollup(ctx context.Context, contentID uint64) error
}

type analyticsRollupServiceImpl struct {
	analyticsRepo repository.AnalyticsRepo
	cfg           config.AnalyticsConfig
	loc           *time.Location
}

func NewAnalyticsRollupService(analyticsRepo repository.AnalyticsRepo, cfg config.AnalyticsConfig) AnalyticsRollupService {
	return &analyticsRollupServiceImpl{
		analyticsRepo: analyticsRepo,
		cfg:           cfg,
		loc:           mustLocation(cfg.Timezone),
	}
}

func (s *analyticsRollupServiceImpl) RefreshRollup(ctx context.Context, contentID uint64) error {
	record, err := s.analyticsRepo.FindOne(ctx, contentID, false)
	if err != nil {
		return persistenceError("find analytics", err)
	}
	if record == nil {
		return ErrAnalyticsNotFound
	}

	views, err := s.analyticsRepo.ListViews(ctx, contentID)
	if err != nil {
		return persistenceError("list views", err)
	}

	demographics := buildDemographics(views, s.cfg.TopCountries)
	timeStats := buildTimeStats(views, s.loc)
	if err = s.analyticsRepo.SaveRollup(ctx, contentID, demographics, timeStats); err != nil {
		return persistenceError("save rollup", err)
	}
	return nil
}

func buildDemographics(views []*model.ViewEvent, topN int) model.Demographics {
	res := model.Demographics{
		AgeRanges: make(map[string]int64, len(consts.AgeRanges)),
		Genders:   make(map[string]int64, len(consts.Genders)),
	}
	for _, r := range consts.AgeRanges {
		res.AgeRanges[r] = 0
	}
	for _, g := range consts.Genders {
		res.Genders[g] = 0
	}

	countries := make(map[string]int64)
	for _, v := range views {
		if v.AgeRange != "" {
			res.AgeRanges[v.AgeRange]++
		}
		if v.Gender != "" {
			res.Genders[v.Gender]++
		}
		if v.Location != "" && v.Location != consts.UnknownValue {
			countries[v.Location]++
		}
	}
	res.TopCountries = rankCountries(countries, topN)
	return res
}

// rankCountries 按次数降序、国家名升序，保留前 n 个
func rankCountries(counts map[string]int64, n int) []model.CountryCount {
	ranked := make([]model.CountryCount, 0, len(counts))
	for c, cnt := range counts {
		ranked = append(ranked, model.CountryCount{Country: c, Count: cnt})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Country < ranked[j].Country
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func buildTimeStats(views []*model.ViewEvent, loc *time.Location) model.TimeStats {
	hours := make(map[int]int64)
	weekdays := make(map[time.Weekday]int64)
	for _, v := range views {
		t := v.ViewedAt.In(loc)
		hours[t.Hour()]++
		weekdays[t.Weekday()]++
	}
	return model.TimeStats{
		PeakHours:    rankHours(hours),
		WeekdayStats: weekdayStats(weekdays),
	}
}

// rankHours 按浏览量降序、小时升序
func rankHours(hours map[int]int64) []model.HourViews {
	ranked := make([]model.HourViews, 0, len(hours))
	for h, v := range hours {
		ranked = append(ranked, model.HourViews{Hour: h, Views: v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Views != ranked[j].Views {
			return ranked[i].Views > ranked[j].Views
		}
		return ranked[i].Hour < ranked[j].Hour
	})
	return ranked
}

func weekdayStats(counts map[time.Weekday]int64) []model.WeekdayViews {
	stats := make([]model.WeekdayViews, 0, len(weekdayOrder))
	for _, d := range weekdayOrder {
		stats = append(stats, model.WeekdayViews{Day: d.String(), Views: counts[d]})
	}
	return stats
}

// mergeDemographics 逐项累加各内容的画像，缺失的分桶按 0 处理
func mergeDemographics(items []model.Demographics, topN int) model.Demographics {
	res := model.Demographics{
		AgeRanges: make(map[string]int64),
		Genders:   make(map[string]int64),
	}
	countries := make(map[string]int64)
	for _, d := range items {
		for k, v := range d.AgeRanges {
			res.AgeRanges[k] += v
		}
		for k, v := range d.Genders {
			res.Genders[k] += v
		}
		for _, c := range d.TopCountries {
			countries[c.Country] += c.Count
		}
	}
	res.TopCountries = rankCountries(countries, topN)
	return res
}

// mergeTimeStats 汇总各内容的时段分布，星期按周一至周日输出
func mergeTimeStats(items []model.TimeStats) *dto.TimeAnalysisDTO {
	hours := make(map[int]int64)
	weekdays := make(map[string]int64)
	for _, t := range items {
		for _, h := range t.PeakHours {
			hours[h.Hour] += h.Views
		}
		for _, w := range t.WeekdayStats {
			weekdays[w.Day] += w.Views
		}
	}

	res := &dto.TimeAnalysisDTO{
		PeakHours:          make([]*dto.HourViewsDTO, 0, len(hours)),
		WeekdayPerformance: make([]*dto.WeekdayViewsDTO, 0, len(weekdayOrder)),
	}
	for _, h := range rankHours(hours) {
		res.PeakHours = append(res.PeakHours, &dto.HourViewsDTO{Hour: h.Hour, Views: h.Views})
	}
	if len(weekdays) == 0 {
		return res
	}
	for _, d := range weekdayOrder {
		res.WeekdayPerformance = append(res.WeekdayPerformance, &dto.WeekdayViewsDTO{Day: d.String(), Views: weekdays[d.String()]})
	}
	return res
}
