package config

import (
	"errors"
	"fmt"
	"time"

	"smarthome-sim/internal/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	Redis   RedisConfig
	MQTT    MQTTConfig
	Influx  InfluxConfig
	MDNS    MDNSConfig
	Metrics MetricsConfig
}

type AppConfig struct {
	HTTPAddr        string
	TickInterval    time.Duration
	HistoryCapacity int
	RandomSeed      int64
}

type LogConfig struct {
	Level  string
	Format string
}

type RedisConfig struct {
	Addr         string
	StreamMaxLen int64
}

type MQTTConfig struct {
	Broker   string
	ClientID string
}

type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

type MDNSConfig struct {
	LocalName string
}

type MetricsConfig struct {
	Enabled bool
}

// Defaults
const (
	DefaultHTTPAddr        = ":5069"
	DefaultTickInterval    = utils.DefaultTickInterval
	DefaultHistoryCapacity = utils.HistoryCapacity
	DefaultStreamMaxLen    = 100
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", DefaultHTTPAddr)
	v.SetDefault("TICK_INTERVAL", DefaultTickInterval.String())
	v.SetDefault("HISTORY_CAPACITY", DefaultHistoryCapacity)
	v.SetDefault("RANDOM_SEED", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REDIS_STREAM_MAXLEN", DefaultStreamMaxLen)
	v.SetDefault("MQTT_CLIENT_ID", "smarthome-panel")
	v.SetDefault("INFLUX_BUCKET", "smarthome")
	v.SetDefault("METRICS_ENABLED", true)
}

// LoadConfig reads configuration from config.yaml, .env, or env vars
func LoadConfig() (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from v, registering the defaults first. An
// unparsable TICK_INTERVAL yields the default interval together with an error.
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			HTTPAddr:        v.GetString("HTTP_ADDR"),
			HistoryCapacity: v.GetInt("HISTORY_CAPACITY"),
			RandomSeed:      v.GetInt64("RANDOM_SEED"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Redis: RedisConfig{
			Addr:         v.GetString("REDIS_ADDR"),
			StreamMaxLen: v.GetInt64("REDIS_STREAM_MAXLEN"),
		},
		MQTT: MQTTConfig{
			Broker:   v.GetString("MQTT_BROKER"),
			ClientID: v.GetString("MQTT_CLIENT_ID"),
		},
		Influx: InfluxConfig{
			URL:    v.GetString("INFLUX_URL"),
			Token:  v.GetString("INFLUX_TOKEN"),
			Org:    v.GetString("INFLUX_ORG"),
			Bucket: v.GetString("INFLUX_BUCKET"),
		},
		MDNS: MDNSConfig{
			LocalName: v.GetString("MDNS_LOCAL_NAME"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if cfg.App.HistoryCapacity <= 0 {
		cfg.App.HistoryCapacity = DefaultHistoryCapacity
	}

	raw := v.GetString("TICK_INTERVAL")
	interval, err := time.ParseDuration(raw)
	if err != nil || interval < time.Second {
		cfg.App.TickInterval = DefaultTickInterval
		if err == nil {
			err = fmt.Errorf("below one second")
		}
		return cfg, fmt.Errorf("invalid TICK_INTERVAL %q: %w", raw, err)
	}
	cfg.App.TickInterval = interval
	return cfg, nil
}
