package service

import (
	"Lumen/internal/api/config"
	"Lumen/internal/model"
	"Lumen/internal/pkg/database"
	"Lumen/internal/pkg/redis"
	"Lumen/internal/repository"
	"fmt"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	mr            *miniredis.Miniredis
	contentRepo   repository.ContentRepo
	analyticsRepo repository.AnalyticsRepo
	cfg           config.AnalyticsConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接让并发写在 sqlite 上逐条串行，这里的并发用例只能证明单条 SQL 自增不丢更新，
	// 不能代替 MySQL 行锁下的并发验证
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.AutoMigrate(&model.Content{}))

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redis.SetClient(client)

	return &testEnv{
		db:            db,
		mr:            mr,
		contentRepo:   repository.NewContentRepository(db),
		analyticsRepo: repository.NewAnalyticsRepository(db),
		cfg: config.AnalyticsConfig{
			Timezone:     "UTC",
			DefaultDays:  30,
			TopN:         5,
			TopCountries: 10,
		},
	}
}

func (e *testEnv) seedContent(t *testing.T, id, owner uint64) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.Content{
		ID:          id,
		UserID:      owner,
		Title:       fmt.Sprintf("content-%d", id),
		ContentType: "video",
		Status:      "published",
	}).Error)
}

// tracker 返回可控时钟的写入服务
func (e *testEnv) tracker(now func() time.Time) *analyticsServiceImpl {
	svc := NewAnalyticsService(e.contentRepo, e.analyticsRepo).(*analyticsServiceImpl)
	if now != nil {
		svc.now = now
	}
	return svc
}

func (e *testEnv) reporter(now time.Time) *analyticsReportServiceImpl {
	svc := NewAnalyticsReportService(e.contentRepo, e.analyticsRepo, e.cfg).(*analyticsReportServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
