package repository

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUnknownEngagementType 存储层无法识别的互动类型
	ErrUnknownEngagementType = errors.New("unknown engagement type")
	// ErrAnalyticsMissing 追加事件时分析记录不存在
	ErrAnalyticsMissing = errors.New("analytics record missing")
)

// 派生指标的重算表达式，与计数列在同一事务内执行
const (
	engagementRateExpr = "CASE WHEN total_views = 0 THEN 0 ELSE (total_likes + total_comments + total_shares) * 100.0 / total_views END"
	avgViewDurationExpr = "CASE WHEN timed_views = 0 THEN 0 ELSE total_view_duration * 1.0 / timed_views END"
)

// NoEventTime 尚未收到任何事件的记录的 last_event_at
var NoEventTime = time.Unix(0, 0).UTC()

var engagementColumns = map[string]string{
	consts.EngagementLike:    "total_likes",
	consts.EngagementComment: "total_comments",
	consts.EngagementShare:   "total_shares",
}

// AnalyticsQuery 按创作者检索分析记录
type AnalyticsQuery struct {
	CreatorID uint64
	ContentID uint64     // 0 表示不限定内容
	Start     *time.Time // 记录在窗口内至少有一次事件
	End       *time.Time // 记录在窗口结束前已创建
}

// WindowCounts 某内容在时间窗口内发生的事件数
type WindowCounts struct {
	Views    int64
	Likes    int64
	Comments int64
	Shares   int64
}

func (c WindowCounts) Engagements() int64 {
	return c.Likes + c.Comments + c.Shares
}

// AnalyticsRepo 分析记录存储。追加事件与计数重算在存储层原子完成
type AnalyticsRepo interface {
	// GetOrCreate 获取或创建内容的分析记录，并发首个事件只会产生一条记录
	GetOrCreate(ctx context.Context, contentID, creatorID uint64) (*model.ContentAnalytics, error)
	// FindOne 不存在时返回 nil, nil
	FindOne(ctx context.Context, contentID uint64, withEvents bool) (*model.ContentAnalytics, error)
	// FindByCreator 结果按 created_at DESC, content_id DESC 排序
	FindByCreator(ctx context.Context, q *AnalyticsQuery) ([]*model.ContentAnalytics, error)
	AppendView(ctx context.Context, view *model.ViewEvent) error
	AppendEngagement(ctx context.Context, engagement *model.EngagementEvent) error
	// ListViewTimes 创作者全部内容在 [start, end] 内的浏览时间
	ListViewTimes(ctx context.Context, creatorID uint64, start, end time.Time) ([]time.Time, error)
	// CountEvents 按事件时间（而非记录时间）统计 [Start, End] 内每个内容的浏览与互动数，未发生事件的内容不出现
	CountEvents(ctx context.Context, q *AnalyticsQuery) (map[uint64]*WindowCounts, error)
	ListViews(ctx context.Context, contentID uint64) ([]*model.ViewEvent, error)
	SaveRollup(ctx context.Context, contentID uint64, demographics model.Demographics, timeStats model.TimeStats) error
}

type analyticsRepoImpl struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepo {
	return &analyticsRepoImpl{db: db}
}

func (r *analyticsRepoImpl) GetOrCreate(ctx context.Context, contentID, creatorID uint64) (*model.ContentAnalytics, error) {
	record := &model.ContentAnalytics{
		ContentID:    contentID,
		CreatorID:    creatorID,
		Demographics: model.Demographics{AgeRanges: map[string]int64{}, Genders: map[string]int64{}, TopCountries: []model.CountryCount{}},
		TimeStats:    model.TimeStats{PeakHours: []model.HourViews{}, WeekdayStats: []model.WeekdayViews{}},
		LastEventAt:  NoEventTime,
	}

	// 依赖 content_id 唯一索引，冲突时保留已有记录
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		DoNothing: true,
	}).Create(record).Error
	if err != nil {
		return nil, err
	}

	existing, err := r.FindOne(ctx, contentID, false)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("analytics record for content %d vanished after upsert", contentID)
	}
	return existing, nil
}

func (r *analyticsRepoImpl) FindOne(ctx context.Context, contentID uint64, withEvents bool) (*model.ContentAnalytics, error) {
	var record model.ContentAnalytics
	q := r.db.WithContext(ctx)
	if withEvents {
		q = q.Preload("Views", func(db *gorm.DB) *gorm.DB {
			return db.Order("viewed_at ASC").Order("id ASC")
		}).Preload("Engagements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		})
	}
	err := q.Where("content_id = ?", contentID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *analyticsRepoImpl) FindByCreator(ctx context.Context, q *AnalyticsQuery) ([]*model.ContentAnalytics, error) {
	records := make([]*model.ContentAnalytics, 0)
	db := r.db.WithContext(ctx).Where("creator_id = ?", q.CreatorID)
	if q.ContentID != 0 {
		db = db.Where("content_id = ?", q.ContentID)
	}
	if q.End != nil {
		db = db.Where("created_at <= ?", *q.End)
	}
	if q.Start != nil {
		db = db.Where("last_event_at >= ?", *q.Start)
	}
	err := db.Order("created_at DESC").Order("content_id DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AppendView 单事务内：写入浏览事件、登记去重观众、累加计数、重算派生指标
func (r *analyticsRepoImpl) AppendView(ctx context.Context, view *model.ViewEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(view).Error; err != nil {
			return err
		}

		var newViewer int64
		if view.ViewerID != nil {
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "content_id"}, {Name: "viewer_id"}},
				DoNothing: true,
			}).Create(&model.ContentViewer{
				ContentID:     view.ContentID,
				ViewerID:      *view.ViewerID,
				FirstViewedAt: view.ViewedAt,
			})
			if res.Error != nil {
				return res.Error
			}
			newViewer = res.RowsAffected
		}

		updates := map[string]interface{}{
			"total_views":   gorm.Expr("total_views + ?", 1),
			"unique_views":  gorm.Expr("unique_views + ?", newViewer),
			"last_event_at": latestEventExpr(view.ViewedAt),
		}
		if view.Duration > 0 {
			updates["total_view_duration"] = gorm.Expr("total_view_duration + ?", view.Duration)
			updates["timed_views"] = gorm.Expr("timed_views + ?", 1)
		}
		if err := r.bump(tx, view.ContentID, updates); err != nil {
			return err
		}
		return recomputeDerived(tx, view.ContentID)
	})
}

// AppendEngagement 单事务内：写入互动事件、累加对应计数、重算互动率
func (r *analyticsRepoImpl) AppendEngagement(ctx context.Context, engagement *model.EngagementEvent) error {
	column, ok := engagementColumns[engagement.Type]
	if !ok {
		return ErrUnknownEngagementType
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(engagement).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			column:          gorm.Expr(column+" + ?", 1),
			"last_event_at": latestEventExpr(engagement.CreatedAt),
		}
		if err := r.bump(tx, engagement.ContentID, updates); err != nil {
			return err
		}
		return recomputeDerived(tx, engagement.ContentID)
	})
}

func (r *analyticsRepoImpl) bump(tx *gorm.DB, contentID uint64, updates map[string]interface{}) error {
	res := tx.Model(&model.ContentAnalytics{}).Where("content_id = ?", contentID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAnalyticsMissing
	}
	return nil
}

// latestEventExpr last_event_at 只前进不后退，乱序到达的事件不会缩小时间窗口
func latestEventExpr(t time.Time) clause.Expr {
	return gorm.Expr("CASE WHEN last_event_at < ? THEN ? ELSE last_event_at END", t, t)
}

func recomputeDerived(tx *gorm.DB, contentID uint64) error {
	return tx.Model(&model.ContentAnalytics{}).
		Where("content_id = ?", contentID).
		UpdateColumns(map[string]interface{}{
			"engagement_rate":       gorm.Expr(engagementRateExpr),
			"average_view_duration": gorm.Expr(avgViewDurationExpr),
		}).Error
}

func (r *analyticsRepoImpl) ListViewTimes(ctx context.Context, creatorID uint64, start, end time.Time) ([]time.Time, error) {
	times := make([]time.Time, 0)
	err := r.db.WithContext(ctx).
		Table("analytics_view_events AS v").
		Joins("JOIN content_analytics AS a ON a.content_id = v.content_id").
		Where("a.creator_id = ?", creatorID).
		Where("v.viewed_at >= ? AND v.viewed_at <= ?", start, end).
		Order("v.viewed_at ASC").
		Pluck("v.viewed_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *analyticsRepoImpl) CountEvents(ctx context.Context, q *AnalyticsQuery) (map[uint64]*WindowCounts, error) {
	var viewRows []struct {
		ContentID uint64
		Total     int64
	}
	err := r.eventScope(ctx, q, "analytics_view_events AS ev", "ev.viewed_at").
		Select("ev.content_id AS content_id, COUNT(*) AS total").
		Group("ev.content_id").
		Scan(&viewRows).Error
	if err != nil {
		return nil, err
	}

	var engagementRows []struct {
		ContentID uint64
		Type      string
		Total     int64
	}
	err = r.eventScope(ctx, q, "analytics_engagement_events AS ev", "ev.created_at").
		Select("ev.content_id AS content_id, ev.type AS type, COUNT(*) AS total").
		Group("ev.content_id, ev.type").
		Scan(&engagementRows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint64]*WindowCounts)
	entry := func(id uint64) *WindowCounts {
		if c, ok := counts[id]; ok {
			return c
		}
		c := &WindowCounts{}
		counts[id] = c
		return c
	}
	for _, row := range viewRows {
		entry(row.ContentID).Views = row.Total
	}
	for _, row := range engagementRows {
		c := entry(row.ContentID)
		switch row.Type {
		case consts.EngagementLike:
			c.Likes = row.Total
		case consts.EngagementComment:
			c.Comments = row.Total
		case consts.EngagementShare:
			c.Shares = row.Total
		}
	}
	return counts, nil
}

// eventScope 事件表关联分析记录，按创作者、内容与事件时间过滤
func (r *analyticsRepoImpl) eventScope(ctx context.Context, q *AnalyticsQuery, table, timeColumn string) *gorm.DB {
	db := r.db.WithContext(ctx).
		Table(table).
		Joins("JOIN content_analytics AS a ON a.content_id = ev.content_id").
		Where("a.creator_id = ?", q.CreatorID)
	if q.ContentID != 0 {
		db = db.Where("ev.content_id = ?", q.ContentID)
	}
	if q.Start != nil {
		db = db.Where(timeColumn+" >= ?", *q.Start)
	}
	if q.End != nil {
		db = db.Where(timeColumn+" <= ?", *q.End)
	}
	return db
}

func (r *analyticsRepoImpl) ListViews(ctx context.Context, contentID uint64) ([]*model.ViewEvent, error) {
	views := make([]*model.ViewEvent, 0)
	err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("viewed_at ASC").Order("id ASC").
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// SaveRollup 仅覆盖画像与时段两个派生列
func (r *analyticsRepoImpl) SaveRollup(ctx context.Context, contentID uint64, demographics model.Demographics, timeStats model.TimeStats) error {
	res := r.db.WithContext(ctx).
		Model(&model.ContentAnalytics{}).
		Where("content_id = ?", contentID).
		Select("demographics", "time_stats").
		Updates(&model.ContentAnalytics{Demographics: demographics, TimeStats: timeStats})
	return res.Error
}
