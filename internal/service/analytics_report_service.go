package service

import (
	"Lumen/internal/api/config"
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"Lumen/internal/pkg/util"
	"Lumen/internal/repository"
	"context"
	log "log/slog"
	"sort"
	"time"
)

const (
	periodAllTime = "All time"
	periodCurrent = "Current"
)

// AnalyticsReportService 只读的聚合报表，不写入分析记录
type AnalyticsReportService interface {
	// GetContentAnalytics 单条内容的完整分析记录，仅作者或管理员可读
	GetContentAnalytics(ctx context.Context, contentID uint64, caller Identity) (*dto.ContentAnalyticsDTO, error)
	// GetCreatorDashboard 最近 days 天的汇总指标与按日浏览趋势
	GetCreatorDashboard(ctx context.Context, creatorID uint64, days int) (*dto.DashboardDTO, error)
	// GetAnalyticsReport 按时间段与内容筛选的明细报表
	GetAnalyticsReport(ctx context.Context, creatorID uint64, req *dto.ReportQueryDTO) (*dto.ReportDTO, error)
}

type analyticsReportServiceImpl struct {
	guard         *accessGuard
	contentRepo   repository.ContentRepo
	analyticsRepo repository.AnalyticsRepo
	cfg           config.AnalyticsConfig
	loc           *time.Location
	now           func() time.Time
}

func NewAnalyticsReportService(contentRepo repository.ContentRepo, analyticsRepo repository.AnalyticsRepo, cfg config.AnalyticsConfig) AnalyticsReportService {
	return &analyticsReportServiceImpl{
		guard:         &accessGuard{contentRepo: contentRepo},
		contentRepo:   contentRepo,
		analyticsRepo: analyticsRepo,
		cfg:           cfg,
		loc:           mustLocation(cfg.Timezone),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// mustLocation 时区非法时回退 UTC，配置校验阶段已拦截大多数情况
func mustLocation(name string) *time.Location {
	loc, err := util.LoadLocation(name)
	if err != nil {
		log.Warn("invalid analytics timezone, fallback to UTC", "timezone", name, "err", err)
		return time.UTC
	}
	return loc
}

func (s *analyticsReportServiceImpl) GetContentAnalytics(ctx context.Context, contentID uint64, caller Identity) (*dto.ContentAnalyticsDTO, error) {
	record, err := s.analyticsRepo.FindOne(ctx, contentID, true)
	if err != nil {
		return nil, persistenceError("find analytics", err)
	}
	if record == nil {
		return nil, ErrAnalyticsNotFound
	}
	if err = s.guard.authorize(caller, record.CreatorID); err != nil {
		return nil, err
	}

	contents, err := s.contentIndex(ctx, []*model.ContentAnalytics{record})
	if err != nil {
		return nil, err
	}
	return toContentAnalyticsDTO(record, contents[record.ContentID]), nil
}

func (s *analyticsReportServiceImpl) GetCreatorDashboard(ctx context.Context, creatorID uint64, days int) (*dto.DashboardDTO, error) {
	if days <= 0 {
		days = s.cfg.DefaultDays
	}
	end := s.now()
	start := end.AddDate(0, 0, -days)

	query := &repository.AnalyticsQuery{
		CreatorID: creatorID,
		Start:     &start,
		End:       &end,
	}
	records, err := s.analyticsRepo.FindByCreator(ctx, query)
	if err != nil {
		return nil, persistenceError("find analytics by creator", err)
	}

	// 汇总与排行只计窗口内发生的事件，不用累计计数器
	counts, err := s.analyticsRepo.CountEvents(ctx, query)
	if err != nil {
		return nil, persistenceError("count events", err)
	}

	overall := &dto.OverallMetricsDTO{
		ContentCount:  len(records),
		TopPerforming: make([]*dto.TopContentDTO, 0),
	}
	entries := make([]windowEntry, 0, len(records))
	for _, r := range records {
		c := windowCountsOf(counts, r.ContentID)
		overall.TotalViews += c.Views
		overall.TotalEngagements += c.Engagements()
		entries = append(entries, windowEntry{record: r, counts: c})
	}
	overall.AverageEngagementRate = engagementRate(overall.TotalEngagements, overall.TotalViews)

	top := topByViews(entries, s.cfg.TopN)
	topRecords := make([]*model.ContentAnalytics, 0, len(top))
	for _, e := range top {
		topRecords = append(topRecords, e.record)
	}
	contents, err := s.contentIndex(ctx, topRecords)
	if err != nil {
		return nil, err
	}
	for _, e := range top {
		overall.TopPerforming = append(overall.TopPerforming, &dto.TopContentDTO{
			Content:        toContentBrief(e.record.ContentID, contents[e.record.ContentID]),
			Views:          e.counts.Views,
			EngagementRate: engagementRate(e.counts.Engagements(), e.counts.Views),
		})
	}

	times, err := s.analyticsRepo.ListViewTimes(ctx, creatorID, start, end)
	if err != nil {
		return nil, persistenceError("list view times", err)
	}

	return &dto.DashboardDTO{
		OverallMetrics: overall,
		ViewTrends:     s.viewTrends(times, start, end),
	}, nil
}

type windowEntry struct {
	record *model.ContentAnalytics
	counts repository.WindowCounts
}

func windowCountsOf(counts map[uint64]*repository.WindowCounts, contentID uint64) repository.WindowCounts {
	if c, ok := counts[contentID]; ok {
		return *c
	}
	return repository.WindowCounts{}
}

// topByViews 按窗口内浏览量降序取前 n 条，浏览量相同时保持输入顺序
func topByViews(entries []windowEntry, n int) []windowEntry {
	sorted := make([]windowEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].counts.Views > sorted[j].counts.Views
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// viewTrends 按配置时区的自然日分桶，升序输出
func (s *analyticsReportServiceImpl) viewTrends(times []time.Time, start, end time.Time) []*dto.ViewTrendDTO {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[util.DayKey(t, s.loc)]++
	}

	trends := make([]*dto.ViewTrendDTO, 0, len(counts))
	if s.cfg.DenseTrends {
		for _, day := range util.DayRange(start, end, s.loc) {
			trends = append(trends, &dto.ViewTrendDTO{Day: day, Count: counts[day]})
		}
		return trends
	}

	for day, c := range counts {
		trends = append(trends, &dto.ViewTrendDTO{Day: day, Count: c})
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Day < trends[j].Day
	})
	return trends
}

func (s *analyticsReportServiceImpl) GetAnalyticsReport(ctx context.Context, creatorID uint64, req *dto.ReportQueryDTO) (*dto.ReportDTO, error) {
	if req == nil {
		req = &dto.ReportQueryDTO{}
	}

	query := &repository.AnalyticsQuery{CreatorID: creatorID, ContentID: req.ContentID}
	period := &dto.PeriodDTO{Start: periodAllTime, End: periodCurrent}

	if req.StartDate != "" {
		start, _, err := util.ParseDate(req.StartDate, s.loc)
		if err != nil {
			return nil, ErrParamInvalid
		}
		query.Start = &start
		period.Start = req.StartDate
	}
	if req.EndDate != "" {
		end, dateOnly, err := util.ParseDate(req.EndDate, s.loc)
		if err != nil {
			return nil, ErrParamInvalid
		}
		// 仅有日期时包含当天全部时间
		if dateOnly {
			end = util.EndOfDay(end)
		}
		query.End = &end
		period.End = req.EndDate
	}
	if query.Start != nil && query.End != nil && query.End.Before(*query.Start) {
		return nil, ErrParamInvalid
	}

	records, err := s.analyticsRepo.FindByCreator(ctx, query)
	if err != nil {
		return nil, persistenceError("find analytics by creator", err)
	}
	contents, err := s.contentIndex(ctx, records)
	if err != nil {
		return nil, err
	}

	// 指定了时间范围时，汇总改用范围内的事件数
	windowed := query.Start != nil || query.End != nil
	var counts map[uint64]*repository.WindowCounts
	if windowed {
		counts, err = s.analyticsRepo.CountEvents(ctx, query)
		if err != nil {
			return nil, persistenceError("count events", err)
		}
	}

	report := &dto.ReportDTO{
		Period:           period,
		Summary:          &dto.ReportSummaryDTO{TotalContent: len(records)},
		ContentBreakdown: make([]*dto.ContentBreakdownDTO, 0, len(records)),
	}

	demographics := make([]model.Demographics, 0, len(records))
	timeStats := make([]model.TimeStats, 0, len(records))
	for _, r := range records {
		breakdown := &dto.ContentBreakdownDTO{
			Content:      toContentBrief(r.ContentID, contents[r.ContentID]),
			Metrics:      toMetricsDTO(r),
			Demographics: toDemographicsDTO(r.Demographics),
			TimeStats:    toTimeStatsDTO(r.TimeStats),
		}
		if windowed {
			c := windowCountsOf(counts, r.ContentID)
			report.Summary.TotalViews += c.Views
			report.Summary.TotalEngagements += c.Engagements()
			breakdown.Period = &dto.PeriodMetricsDTO{
				Views:          c.Views,
				Likes:          c.Likes,
				Comments:       c.Comments,
				Shares:         c.Shares,
				EngagementRate: engagementRate(c.Engagements(), c.Views),
			}
		} else {
			report.Summary.TotalViews += r.TotalViews
			report.Summary.TotalEngagements += r.TotalEngagements()
		}
		report.ContentBreakdown = append(report.ContentBreakdown, breakdown)
		demographics = append(demographics, r.Demographics)
		timeStats = append(timeStats, r.TimeStats)
	}
	report.Summary.AverageEngagementRate = engagementRate(report.Summary.TotalEngagements, report.Summary.TotalViews)
	report.DemographicsSummary = toDemographicsDTO(mergeDemographics(demographics, s.cfg.TopCountries))
	report.TimeAnalysis = mergeTimeStats(timeStats)

	return report, nil
}

// contentIndex 批量加载内容摘要，缺失的内容只保留 ID
func (s *analyticsReportServiceImpl) contentIndex(ctx context.Context, records []*model.ContentAnalytics) (map[uint64]*model.Content, error) {
	index := make(map[uint64]*model.Content, len(records))
	if len(records) == 0 {
		return index, nil
	}
	ids := make([]uint64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ContentID)
	}
	contents, err := s.contentRepo.GetContentByIds(ctx, ids)
	if err != nil {
		return nil, persistenceError("get contents", err)
	}
	for _, c := range contents {
		index[c.ID] = c
	}
	return index, nil
}
