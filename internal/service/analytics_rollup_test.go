package service

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDemographics(t *testing.T) {
	views := []*model.ViewEvent{
		{AgeRange: "18-24", Gender: "female", Location: "US"},
		{AgeRange: "18-24", Gender: "male", Location: "US"},
		{AgeRange: "55+", Location: "DE"},
		{Location: "unknown"},
		{Location: "FR"},
	}

	demo := buildDemographics(views, 2)
	assert.Equal(t, int64(2), demo.AgeRanges["18-24"])
	assert.Equal(t, int64(1), demo.AgeRanges["55+"])
	assert.Equal(t, int64(0), demo.AgeRanges["35-44"])
	assert.Len(t, demo.AgeRanges, 6)
	assert.Equal(t, int64(1), demo.Genders["female"])
	assert.Equal(t, int64(0), demo.Genders["other"])
	// 同为 1 次时按国家名升序
	assert.Equal(t, []model.CountryCount{{Country: "US", Count: 2}, {Country: "DE", Count: 1}}, demo.TopCountries)
}

func TestBuildTimeStats(t *testing.T) {
	// 2024-03-04 为周一
	monday := time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC)
	views := []*model.ViewEvent{
		{ViewedAt: monday},
		{ViewedAt: monday.Add(10 * time.Minute)},
		{ViewedAt: monday.Add(11 * time.Hour)},
		{ViewedAt: monday.AddDate(0, 0, 6)},
	}

	stats := buildTimeStats(views, time.UTC)
	require.Len(t, stats.PeakHours, 2)
	assert.Equal(t, model.HourViews{Hour: 9, Views: 3}, stats.PeakHours[0])
	assert.Equal(t, model.HourViews{Hour: 20, Views: 1}, stats.PeakHours[1])

	require.Len(t, stats.WeekdayStats, 7)
	assert.Equal(t, model.WeekdayViews{Day: "Monday", Views: 3}, stats.WeekdayStats[0])
	assert.Equal(t, model.WeekdayViews{Day: "Sunday", Views: 1}, stats.WeekdayStats[6])

	shanghai, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	shifted := buildTimeStats(views[2:3], shanghai)
	// 周一 20:00 UTC 为周二 04:00 上海时间
	assert.Equal(t, 4, shifted.PeakHours[0].Hour)
	assert.Equal(t, int64(1), shifted.WeekdayStats[1].Views)
}

func TestRefreshRollup(t *testing.T) {
	env := newTestEnv(t)
	env.seedContent(t, 1, creator.UserID)
	ctx := context.Background()
	tracker := env.tracker(fixedClock(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)))

	require.NoError(t, tracker.TrackView(ctx, 1, 1, &dto.TrackViewDTO{AgeRange: "25-34", Gender: "other", Location: "JP"}))
	require.NoError(t, tracker.TrackView(ctx, 1, 2, &dto.TrackViewDTO{AgeRange: "25-34", Location: "JP"}))

	rollup := NewAnalyticsRollupService(env.analyticsRepo, env.cfg)
	require.NoError(t, rollup.RefreshRollup(ctx, 1))

	record, err := env.analyticsRepo.FindOne(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), record.Demographics.AgeRanges["25-34"])
	assert.Equal(t, int64(1), record.Demographics.Genders["other"])
	assert.Equal(t, []model.CountryCount{{Country: "JP", Count: 2}}, record.Demographics.TopCountries)
	assert.Equal(t, []model.HourViews{{Hour: 9, Views: 2}}, record.TimeStats.PeakHours)
	assert.Equal(t, int64(2), record.TotalViews)

	assert.ErrorIs(t, rollup.RefreshRollup(ctx, 404), ErrAnalyticsNotFound)
}

func TestMergeDemographics_MissingBuckets(t *testing.T) {
	merged := mergeDemographics([]model.Demographics{
		{AgeRanges: map[string]int64{"18-24": 1}},
		{Genders: map[string]int64{"male": 2}, TopCountries: []model.CountryCount{{Country: "US", Count: 1}}},
		{},
	}, 10)
	assert.Equal(t, map[string]int64{"18-24": 1}, merged.AgeRanges)
	assert.Equal(t, map[string]int64{"male": 2}, merged.Genders)
	assert.Len(t, merged.TopCountries, 1)
}
