package database

import (
	"Lumen/internal/api/config"
	"Lumen/internal/model"
	"Lumen/internal/pkg/logger"
	"fmt"
	log "log/slog"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewGormDB 初始化并返回 *gorm.DB 实例，处理连接池配置
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid database dsn: %w", err)
	}

	db, err := gorm.Open(mysql.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	if cfg.AutoMigrate {
		if err = Migrate(db); err != nil {
			return nil, err
		}
	}

	log.Info("Database connection established successfully.")
	return db, nil
}

// normalizeDSN 强制 parseTime 并使用 UTC，保证事件时间戳按 UTC 读写
func normalizeDSN(raw string) (string, error) {
	dsnCfg, err := mysqldrv.ParseDSN(raw)
	if err != nil {
		return "", err
	}
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.UTC
	log.Info("Connecting database", "addr", dsnCfg.Addr, "db", dsnCfg.DBName)
	return dsnCfg.FormatDSN(), nil
}

// GormConfig 统一的 gorm 配置，时间戳统一使用 UTC
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.NewGormLogger(),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Migrate 同步分析模块的表结构
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.ContentAnalytics{},
		&model.ViewEvent{},
		&model.EngagementEvent{},
		&model.ContentViewer{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate analytics tables: %w", err)
	}
	return nil
}
