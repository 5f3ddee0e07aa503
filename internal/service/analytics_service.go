package service

import (
	"Lumen/internal/api/dto"
	"Lumen/internal/model"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/redis"
	"Lumen/internal/pkg/util"
	"Lumen/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// AnalyticsService 事件写入：分析记录的唯一写入方
type AnalyticsService interface {
	// TrackView 记录一次浏览，viewerID 为 0 表示匿名
	TrackView(ctx context.Context, contentID uint64, viewerID uint64, req *dto.TrackViewDTO) error
	// TrackEngagement 记录一次互动，类型不合法时不产生任何写入
	TrackEngagement(ctx context.Context, contentID uint64, viewerID uint64, req *dto.TrackEngagementDTO) error
}

type analyticsServiceImpl struct {
	guard         *accessGuard
	analyticsRepo repository.AnalyticsRepo
	group         singleflight.Group
	now           func() time.Time
}

func NewAnalyticsService(contentRepo repository.ContentRepo, analyticsRepo repository.AnalyticsRepo) AnalyticsService {
	return &analyticsServiceImpl{
		guard:         &accessGuard{contentRepo: contentRepo},
		analyticsRepo: analyticsRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *analyticsServiceImpl) TrackView(ctx context.Context, contentID uint64, viewerID uint64, req *dto.TrackViewDTO) error {
	if req == nil {
		req = &dto.TrackViewDTO{}
	}
	if req.Duration < 0 {
		return ErrParamInvalid
	}

	record, err := s.ensureRecord(ctx, contentID)
	if err != nil {
		return err
	}

	view := &model.ViewEvent{
		ContentID:  record.ContentID,
		ViewerID:   util.PtrUint64(viewerID),
		DeviceType: orUnknown(req.DeviceType),
		Location:   orUnknown(req.Location),
		AgeRange:   req.AgeRange,
		Gender:     req.Gender,
		Duration:   req.Duration,
		ViewedAt:   s.now(),
	}
	if err = s.analyticsRepo.AppendView(ctx, view); err != nil {
		return persistenceError("append view", err)
	}

	s.markDirty(ctx, contentID)
	return nil
}

func (s *analyticsServiceImpl) TrackEngagement(ctx context.Context, contentID uint64, viewerID uint64, req *dto.TrackEngagementDTO) error {
	if req == nil || !isEngagementType(req.Type) {
		return ErrInvalidEngagementType
	}
	if viewerID == 0 {
		return ErrMissingLoginCredentials
	}

	record, err := s.ensureRecord(ctx, contentID)
	if err != nil {
		return err
	}

	engagement := &model.EngagementEvent{
		ContentID: record.ContentID,
		Type:      req.Type,
		ViewerID:  viewerID,
		CreatedAt: s.now(),
	}
	if err = s.analyticsRepo.AppendEngagement(ctx, engagement); err != nil {
		if errors.Is(err, repository.ErrUnknownEngagementType) {
			return ErrInvalidEngagementType
		}
		return persistenceError("append engagement", err)
	}

	s.markDirty(ctx, contentID)
	return nil
}

// ensureRecord 校验内容存在并获取或创建分析记录，同一进程内的并发首个事件合并为一次创建
func (s *analyticsServiceImpl) ensureRecord(ctx context.Context, contentID uint64) (*model.ContentAnalytics, error) {
	content, err := s.guard.resolveContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	// 合并后的调用被多个请求共享，不能随首个调用方的取消而失败
	sharedCtx := context.WithoutCancel(ctx)
	key := strconv.FormatUint(contentID, 10)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.analyticsRepo.GetOrCreate(sharedCtx, content.ID, content.UserID)
	})
	if err != nil {
		return nil, persistenceError("get or create analytics", err)
	}
	return v.(*model.ContentAnalytics), nil
}

// markDirty 标记内容待汇总，失败只记录日志
func (s *analyticsServiceImpl) markDirty(ctx context.Context, contentID uint64) {
	if err := redis.AddToSet(ctx, consts.AnalyticsDirtyKey, contentID); err != nil {
		log.WarnContext(ctx, "mark analytics dirty failed", "content_id", contentID, "err", err)
	}
}

func isEngagementType(t string) bool {
	switch t {
	case consts.EngagementLike, consts.EngagementComment, consts.EngagementShare:
		return true
	}
	return false
}

func orUnknown(v string) string {
	if v == "" {
		return consts.UnknownValue
	}
	return v
}
