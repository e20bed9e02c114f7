// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port           string
	DatabaseURL    string
	StorageDriver  string
	AdminToken     string
	AllowedOrigins string
	LogLevel       string
	LogFormat      string
	UploadDir      string

	Football FootballAPIConfig
	Jobs     JobsConfig
	R2       R2Config
}

type FootballAPIConfig struct {
	APIKey            string
	BaseURL           string
	LeagueID          int
	Season            int
	RequestsPerSecond float64
	LookaheadDays     int
	Timeout           time.Duration
}

type JobsConfig struct {
	FixtureSyncInterval  time.Duration
	ScoringSweepInterval time.Duration
	StatsReconcileCron   string
	PostPublishInterval  time.Duration
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Enabled reports whether enough credentials are present to talk to R2.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

// Load reads .env when present and builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds the Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnvWithDefault("PORT", "5200"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StorageDriver:  strings.ToLower(getEnvWithDefault("STORAGE_DRIVER", StoragePostgres)),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		AllowedOrigins: getEnvWithDefault("ALLOWED_ORIGINS", "*"),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvWithDefault("LOG_FORMAT", "json"),
		UploadDir:      getEnvWithDefault("UPLOAD_DIR", "uploads"),
		Football: FootballAPIConfig{
			APIKey:            os.Getenv("FOOTBALL_API_KEY"),
			BaseURL:           getEnvWithDefault("FOOTBALL_API_BASE_URL", "https://v3.football.api-sports.io"),
			LeagueID:          getEnvIntWithDefault("FOOTBALL_LEAGUE_ID", 71),
			Season:            getEnvIntWithDefault("FOOTBALL_SEASON", time.Now().Year()),
			RequestsPerSecond: getEnvFloatWithDefault("FOOTBALL_API_RPS", 1),
			LookaheadDays:     getEnvIntWithDefault("FOOTBALL_LOOKAHEAD_DAYS", 7),
			Timeout:           getEnvDurationWithDefault("FOOTBALL_API_TIMEOUT", 10*time.Second),
		},
		Jobs: JobsConfig{
			FixtureSyncInterval:  getEnvDurationWithDefault("FIXTURE_SYNC_INTERVAL", time.Hour),
			ScoringSweepInterval: getEnvDurationWithDefault("SCORING_SWEEP_INTERVAL", 5*time.Minute),
			StatsReconcileCron:   getEnvWithDefault("STATS_RECONCILE_CRON", "0 4 * * *"),
			PostPublishInterval:  getEnvDurationWithDefault("POST_PUBLISH_INTERVAL", time.Minute),
		},
		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.AdminToken == "" {
		errs = append(errs, errors.New("ADMIN_TOKEN is required"))
	}
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.Football.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("FOOTBALL_API_RPS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid number, using default")
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
	}
	return defaultValue
}
