package config

// Config 配置主体
type Config struct {
	Server                ServerConfig          `mapstructure:"server"`
	DB                    DBConfig              `mapstructure:"database"`
	Redis                 RedisConfig           `mapstructure:"redis"`
	Mongo                 MongoConfig           `mapstructure:"mongo"`
	Kafka                 KafkaConfig           `mapstructure:"kafka"`
	KafkaTrackingConsumer KafkaTrackingConsumer `mapstructure:"kafka_tracking_consumer"`
	Logstash              LogstashConfig        `mapstructure:"logstash"`
	JWT                   JWTConfig             `mapstructure:"jwt"`
	Analytics             AnalyticsConfig       `mapstructure:"analytics"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig Mongo配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
	// InitialOffset 消费组首次启动的位置：oldest 或 newest
	InitialOffset string `mapstructure:"initial_offset"`
}

type KafkaTrackingConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// LogstashConfig 远程日志
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// AnalyticsConfig 分析引擎配置
type AnalyticsConfig struct {
	Store        string `mapstructure:"store"`         // mysql 或 mongo
	Timezone     string `mapstructure:"timezone"`      // 按日分桶使用的时区
	DenseTrends  bool   `mapstructure:"dense_trends"`  // 趋势是否补齐零值日期
	DefaultDays  int    `mapstructure:"default_days"`  // 仪表盘默认统计天数
	TopN         int    `mapstructure:"top_n"`         // 仪表盘热门内容数量
	TopCountries int    `mapstructure:"top_countries"` // 国家排行保留数量
	RollupSpec   string `mapstructure:"rollup_spec"`   // 画像汇总任务的 cron 表达式
}
