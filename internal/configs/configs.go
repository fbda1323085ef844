package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	AppURL                 string `mapstructure:"app_url"`
	APIBaseURL             string `mapstructure:"api_base_url"`
	WSURL                  string `mapstructure:"ws_url"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds"`
	ReconnectDelaySeconds  int    `mapstructure:"reconnect_delay_seconds"`
	SyncIntervalSeconds    int    `mapstructure:"sync_interval_seconds"`
	BreakerMaxFailures     int    `mapstructure:"breaker_max_failures"`
	SnapshotDriver         string `mapstructure:"snapshot_driver"`
	SnapshotDSN            string `mapstructure:"snapshot_dsn"`
	RedisAddr              string `mapstructure:"redis_addr"`
	RedisKeyPrefix         string `mapstructure:"redis_key_prefix"`
	RateLimit              int    `mapstructure:"rate_limit_per_minute"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	LogLevel               string `mapstructure:"log_level"`
	LogFile                string `mapstructure:"log_file"`
}

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8090")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		APIBaseURL:             getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
		WSURL:                  getEnv("WS_URL", "ws://127.0.0.1:8000/ws"),
		RequestTimeoutSeconds:  getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10),
		ReconnectDelaySeconds:  getEnvAsInt("RECONNECT_DELAY_SECONDS", 5),
		SyncIntervalSeconds:    getEnvAsInt("SYNC_INTERVAL_SECONDS", 0),
		BreakerMaxFailures:     getEnvAsInt("BREAKER_MAX_FAILURES", 3),
		SnapshotDriver:         getEnv("SNAPSHOT_DRIVER", DriverSQLite),
		SnapshotDSN:            getEnv("SNAPSHOT_DSN", "task-pilot.db"),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisKeyPrefix:         getEnv("REDIS_KEY_PREFIX", "task-pilot:"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFile:                getEnv("LOG_FILE", ""),
	}

	if path := os.Getenv("TASKPILOT_CONFIG"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			log.Fatalf("failed to read config file %s: %v", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

// LoadFile overlays the values present in a YAML file onto cfg.
func LoadFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func (cfg Config) Validate() error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty (e.g. http://127.0.0.1:8000)")
	}
	if cfg.WSURL == "" {
		return fmt.Errorf("WS_URL must not be empty (e.g. ws://127.0.0.1:8000/ws)")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.ReconnectDelaySeconds <= 0 {
		return fmt.Errorf("RECONNECT_DELAY_SECONDS must be greater than 0")
	}
	if cfg.SyncIntervalSeconds < 0 {
		return fmt.Errorf("SYNC_INTERVAL_SECONDS must not be negative")
	}
	if cfg.BreakerMaxFailures <= 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES must be greater than 0")
	}
	if cfg.SnapshotDriver != DriverSQLite && cfg.SnapshotDriver != DriverRedis {
		return fmt.Errorf("SNAPSHOT_DRIVER must be %q or %q", DriverSQLite, DriverRedis)
	}
	if cfg.SnapshotDriver == DriverSQLite && cfg.SnapshotDSN == "" {
		return fmt.Errorf("SNAPSHOT_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}
