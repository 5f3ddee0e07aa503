package job

import (
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/logger"
	"Lumen/internal/pkg/redis"
	"Lumen/internal/pkg/util"
	"Lumen/internal/service"
	"context"
	log "log/slog"
)

// AnalyticsRollupJob 周期性地为有新事件的内容重算受众画像与时段分布
type AnalyticsRollupJob struct {
	rollupSvc service.AnalyticsRollupService
}

func NewAnalyticsRollupJob(rollupSvc service.AnalyticsRollupService) *AnalyticsRollupJob {
	return &AnalyticsRollupJob{
		rollupSvc: rollupSvc,
	}
}

func (s *AnalyticsRollupJob) Run() {
	ctx := logger.NewTraceContext(context.Background(), "job-rollup-")
	if _, err := s.RunOnce(ctx); err != nil {
		log.ErrorContext(ctx, "analytics rollup failed", "err", err)
	}
}

// RunOnce 处理一轮脏数据集合，返回成功汇总的内容数
func (s *AnalyticsRollupJob) RunOnce(ctx context.Context) (int, error) {
	processingKey := consts.AnalyticsDirtyKey + ":processing"

	// 上一轮中断时 processing 集合仍在，合并后继续处理
	leftover, err := redis.Exists(ctx, processingKey)
	if err != nil {
		return 0, err
	}
	if leftover {
		if err = redis.MergeSet(ctx, consts.AnalyticsDirtyKey, processingKey); err != nil {
			return 0, err
		}
	} else {
		dirty, err := redis.Exists(ctx, consts.AnalyticsDirtyKey)
		if err != nil {
			return 0, err
		}
		if !dirty {
			return 0, nil
		}
		if err = redis.Rename(ctx, consts.AnalyticsDirtyKey, processingKey); err != nil {
			return 0, err
		}
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		return 0, err
	}
	contentIDs, err := util.StrSliceToUInt64Slice(members)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, cid := range contentIDs {
		if err = s.rollupSvc.RefreshRollup(ctx, cid); err != nil {
			log.ErrorContext(ctx, "refresh analytics rollup error", "content_id", cid, "err", err)
			// 放回脏集合，下一轮重试
			if addErr := redis.AddToSet(ctx, consts.AnalyticsDirtyKey, cid); addErr != nil {
				log.ErrorContext(ctx, "requeue dirty content error", "content_id", cid, "err", addErr)
			}
			continue
		}
		done++
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete analytics processing set error", "err", err)
	}

	log.InfoContext(ctx, "analytics rollup success", "content_count", len(contentIDs), "refreshed", done)
	return done, nil
}
