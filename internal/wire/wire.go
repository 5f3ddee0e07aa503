package wire

import (
	"Lumen/internal/api"
	"Lumen/internal/api/config"
	"Lumen/internal/api/handler"
	"Lumen/internal/job"
	"Lumen/internal/pkg/cron"
	"Lumen/internal/pkg/kafka"
	"Lumen/internal/pkg/mongo"
	"Lumen/internal/repository"
	"Lumen/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager // 未启用 Kafka 时为 nil
}

// BuildApplication 组装依赖，mongoDB 仅在 analytics.store=mongo 时需要
func BuildApplication(db *gorm.DB, mongoDB *mongodrv.Database, cfg *config.Config) (*ApplicationContainer, error) {
	contentRepo := repository.NewContentRepository(db)
	analyticsRepo, err := buildAnalyticsRepo(db, mongoDB, cfg.Analytics.Store)
	if err != nil {
		return nil, err
	}

	analyticsService := service.NewAnalyticsService(contentRepo, analyticsRepo)
	reportService := service.NewAnalyticsReportService(contentRepo, analyticsRepo, cfg.Analytics)
	rollupService := service.NewAnalyticsRollupService(analyticsRepo, cfg.Analytics)

	handlers := &api.HandlersGroup{
		TrackingHandler:  handler.NewTrackingHandler(analyticsService),
		AnalyticsHandler: handler.NewAnalyticsHandler(reportService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(cfg.Analytics.RollupSpec, job.NewAnalyticsRollupJob(rollupService))

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		kafkaMgr, err = kafka.NewConsumerManager(cfg, analyticsService)
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}

func buildAnalyticsRepo(db *gorm.DB, mongoDB *mongodrv.Database, store string) (repository.AnalyticsRepo, error) {
	switch store {
	case config.StoreMongo:
		if mongoDB == nil {
			return nil, errors.New("analytics store is mongo but no mongo connection was provided")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, mongoDB); err != nil {
			return nil, err
		}
		log.Info("Analytics store selected", "store", store)
		return mongo.NewAnalyticsRepo(mongoDB), nil
	default:
		log.Info("Analytics store selected", "store", config.StoreMySQL)
		return repository.NewAnalyticsRepository(db), nil
	}
}
