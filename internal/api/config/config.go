package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

const (
	StoreMySQL = "mysql"
	StoreMongo = "mongo"

	OffsetOldest = "oldest"
	OffsetNewest = "newest"
)

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	viper.SetEnvPrefix("LUMEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	Cfg = &cfg

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 60)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("mongo.database", "lumen")
	v.SetDefault("kafka.consumer.session_timeout", 30)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 5)
	v.SetDefault("kafka_tracking_consumer.topic", "analytics_events")
	v.SetDefault("kafka_tracking_consumer.group_id", "lumen-analytics")
	v.SetDefault("jwt.issuer", "Lumen")
	v.SetDefault("analytics.store", StoreMySQL)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.default_days", 30)
	v.SetDefault("analytics.top_n", 5)
	v.SetDefault("analytics.top_countries", 10)
	v.SetDefault("analytics.rollup_spec", "@every 1m")
	v.SetDefault("kafka.consumer.initial_offset", OffsetOldest)
}

// Validate 校验必须项
func (c *Config) Validate() error {
	switch c.Analytics.Store {
	case StoreMySQL, StoreMongo:
	default:
		return fmt.Errorf("unsupported analytics store: %q", c.Analytics.Store)
	}
	if c.Analytics.DefaultDays <= 0 {
		return fmt.Errorf("analytics.default_days must be positive, got %d", c.Analytics.DefaultDays)
	}
	if c.Analytics.TopN <= 0 {
		return fmt.Errorf("analytics.top_n must be positive, got %d", c.Analytics.TopN)
	}
	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("invalid analytics.timezone: %w", err)
	}
	if c.Kafka.Enable {
		switch c.Kafka.Consumer.InitialOffset {
		case OffsetOldest, OffsetNewest:
		default:
			return fmt.Errorf("unsupported kafka.consumer.initial_offset: %q", c.Kafka.Consumer.InitialOffset)
		}
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	return nil
}
