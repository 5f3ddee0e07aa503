package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		JWT: JWTConfig{Secret: "secret"},
		Analytics: AnalyticsConfig{
			Store:       StoreMySQL,
			Timezone:    "UTC",
			DefaultDays: 30,
			TopN:        5,
		},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cases := map[string]func(c *Config){
		"store":    func(c *Config) { c.Analytics.Store = "postgres" },
		"days":     func(c *Config) { c.Analytics.DefaultDays = 0 },
		"top_n":    func(c *Config) { c.Analytics.TopN = -1 },
		"timezone": func(c *Config) { c.Analytics.Timezone = "Mars/Olympus" },
		"secret":   func(c *Config) { c.JWT.Secret = "" },
		"offset": func(c *Config) {
			c.Kafka.Enable = true
			c.Kafka.Consumer.InitialOffset = "latest"
		},
	}
	for name, mutate := range cases {
		c := validConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("jwt.secret", "secret")

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, StoreMySQL, cfg.Analytics.Store)
	assert.Equal(t, "UTC", cfg.Analytics.Timezone)
	assert.Equal(t, 30, cfg.Analytics.DefaultDays)
	assert.Equal(t, 5, cfg.Analytics.TopN)
	assert.Equal(t, 10, cfg.Analytics.TopCountries)
	assert.Equal(t, "@every 1m", cfg.Analytics.RollupSpec)
	assert.Equal(t, "analytics_events", cfg.KafkaTrackingConsumer.Topic)
	assert.Equal(t, OffsetOldest, cfg.Kafka.Consumer.InitialOffset)
}
