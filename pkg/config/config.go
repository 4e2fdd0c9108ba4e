package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Scoring  ScoringConfig
	Bulk     BulkConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs caching of computed assessment payloads.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ScoringConfig exposes the scoring policy constants. Every threshold the
// engine applies is adjustable here without touching the algorithms.
type ScoringConfig struct {
	LatenessGraceMinutes        int
	EarlyDepartureGraceMinutes  int
	LowEngagementThreshold      int
	InactivityWindowDays        int
	AttendanceFloor             float64
	MissedSessionsFlag          int
	SlowProgressRatio           float64
	ExpectedProgressHorizonDays int
	ExpectedProgressAtHorizon   float64
	SkillMasteryLevel           int
	MinSkillCount               int
	LowTrackRate                float64
	TrackImbalancePoints        float64
}

// BulkConfig tunes the bulk recompute runner.
type BulkConfig struct {
	BatchSize  int
	Workers    int
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.Scoring = ScoringConfig{
		LatenessGraceMinutes:        v.GetInt("SCORING_LATENESS_GRACE_MINUTES"),
		EarlyDepartureGraceMinutes:  v.GetInt("SCORING_EARLY_DEPARTURE_GRACE_MINUTES"),
		LowEngagementThreshold:      v.GetInt("SCORING_LOW_ENGAGEMENT_THRESHOLD"),
		InactivityWindowDays:        v.GetInt("SCORING_INACTIVITY_WINDOW_DAYS"),
		AttendanceFloor:             v.GetFloat64("SCORING_ATTENDANCE_FLOOR"),
		MissedSessionsFlag:          v.GetInt("SCORING_MISSED_SESSIONS_FLAG"),
		SlowProgressRatio:           v.GetFloat64("SCORING_SLOW_PROGRESS_RATIO"),
		ExpectedProgressHorizonDays: v.GetInt("SCORING_EXPECTED_PROGRESS_HORIZON_DAYS"),
		ExpectedProgressAtHorizon:   v.GetFloat64("SCORING_EXPECTED_PROGRESS_AT_HORIZON"),
		SkillMasteryLevel:           v.GetInt("SCORING_SKILL_MASTERY_LEVEL"),
		MinSkillCount:               v.GetInt("SCORING_MIN_SKILL_COUNT"),
		LowTrackRate:                v.GetFloat64("SCORING_LOW_TRACK_RATE"),
		TrackImbalancePoints:        v.GetFloat64("SCORING_TRACK_IMBALANCE_POINTS"),
	}

	cfg.Bulk = BulkConfig{
		BatchSize:  v.GetInt("BULK_BATCH_SIZE"),
		Workers:    v.GetInt("BULK_WORKERS"),
		QueueSize:  v.GetInt("BULK_QUEUE_SIZE"),
		MaxRetries: v.GetInt("BULK_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("BULK_RETRY_DELAY"), 5*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "formatrack_engagement")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("SCORING_LATENESS_GRACE_MINUTES", 5)
	v.SetDefault("SCORING_EARLY_DEPARTURE_GRACE_MINUTES", 15)
	v.SetDefault("SCORING_LOW_ENGAGEMENT_THRESHOLD", 30)
	v.SetDefault("SCORING_INACTIVITY_WINDOW_DAYS", 7)
	v.SetDefault("SCORING_ATTENDANCE_FLOOR", 70)
	v.SetDefault("SCORING_MISSED_SESSIONS_FLAG", 3)
	v.SetDefault("SCORING_SLOW_PROGRESS_RATIO", 0.5)
	v.SetDefault("SCORING_EXPECTED_PROGRESS_HORIZON_DAYS", 30)
	v.SetDefault("SCORING_EXPECTED_PROGRESS_AT_HORIZON", 50)
	v.SetDefault("SCORING_SKILL_MASTERY_LEVEL", 16)
	v.SetDefault("SCORING_MIN_SKILL_COUNT", 5)
	v.SetDefault("SCORING_LOW_TRACK_RATE", 50)
	v.SetDefault("SCORING_TRACK_IMBALANCE_POINTS", 30)

	v.SetDefault("BULK_BATCH_SIZE", 50)
	v.SetDefault("BULK_WORKERS", 2)
	v.SetDefault("BULK_QUEUE_SIZE", 16)
	v.SetDefault("BULK_MAX_RETRIES", 3)
	v.SetDefault("BULK_RETRY_DELAY", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
