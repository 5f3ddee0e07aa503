package repository

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/database"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB 每个测试独享一个内存库，单连接保证事务串行
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接下并发用例只验证单条 SQL 自增不丢更新，不覆盖 MySQL 行锁语义
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.AutoMigrate(&model.Content{}))
	return db
}

func seedContent(t *testing.T, db *gorm.DB, id, owner uint64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Content{
		ID:          id,
		UserID:      owner,
		Title:       fmt.Sprintf("content-%d", id),
		ContentType: "video",
		Status:      "published",
	}).Error)
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}
