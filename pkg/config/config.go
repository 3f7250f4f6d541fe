package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache backends supported by CACHE_BACKEND.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Cache       CacheConfig
	Canvas      CanvasConfig
	Aggregation AggregationConfig
	Calendar    CalendarConfig
}

type DatabaseConfig struct {
	Enabled      bool
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

// CacheConfig selects the cache backend and the TTL of every cached Canvas operation.
type CacheConfig struct {
	Enabled    bool
	Backend    string
	MaxEntries int
	DefaultTTL time.Duration
	TTL        CacheTTLConfig
}

// CacheTTLConfig holds per-operation expiry. Course lists change rarely, announcements often.
type CacheTTLConfig struct {
	CurrentUser   time.Duration
	Courses       time.Duration
	Announcements time.Duration
	Professors    time.Duration
	Assignments   time.Duration
	CourseData    time.Duration
}

// CanvasConfig holds fallback credentials and upstream client tuning.
type CanvasConfig struct {
	DefaultURL      string
	DefaultAPIKey   string
	HTTPTimeout     time.Duration
	PerPage         int
	RateLimit       float64
	RateBurst       int
	BreakerEnabled  bool
	ClientCacheSize int
}

// AggregationConfig bounds the fan-out worker pool.
type AggregationConfig struct {
	MaxWorkers int
}

// CalendarConfig sets the default calendar lookahead window.
type CalendarConfig struct {
	DefaultDays int
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Enabled:      v.GetBool("DB_ENABLED"),
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

	backend := strings.ToLower(strings.TrimSpace(v.GetString("CACHE_BACKEND")))
	if backend != CacheBackendRedis {
		backend = CacheBackendMemory
	}
	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("CACHE_ENABLED"),
		Backend:    backend,
		MaxEntries: v.GetInt("CACHE_MAX_ENTRIES"),
		DefaultTTL: parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 10*time.Minute),
		TTL: CacheTTLConfig{
			CurrentUser:   parseDuration(v.GetString("CACHE_TTL_CURRENT_USER"), time.Hour),
			Courses:       parseDuration(v.GetString("CACHE_TTL_COURSES"), 30*time.Minute),
			Announcements: parseDuration(v.GetString("CACHE_TTL_ANNOUNCEMENTS"), 5*time.Minute),
			Professors:    parseDuration(v.GetString("CACHE_TTL_PROFESSORS"), time.Hour),
			Assignments:   parseDuration(v.GetString("CACHE_TTL_ASSIGNMENTS"), 10*time.Minute),
			CourseData:    parseDuration(v.GetString("CACHE_TTL_COURSE_DATA"), 30*time.Minute),
		},
	}

	cfg.Canvas = CanvasConfig{
		DefaultURL:      strings.TrimSpace(v.GetString("CANVAS_URL")),
		DefaultAPIKey:   strings.TrimSpace(v.GetString("CANVAS_API_KEY")),
		HTTPTimeout:     parseDuration(v.GetString("CANVAS_HTTP_TIMEOUT"), 30*time.Second),
		PerPage:         v.GetInt("CANVAS_PER_PAGE"),
		RateLimit:       v.GetFloat64("CANVAS_RATE_LIMIT"),
		RateBurst:       v.GetInt("CANVAS_RATE_BURST"),
		BreakerEnabled:  v.GetBool("CANVAS_BREAKER_ENABLED"),
		ClientCacheSize: v.GetInt("CANVAS_CLIENT_CACHE_SIZE"),
	}

	cfg.Aggregation = AggregationConfig{
		MaxWorkers: v.GetInt("AGGREGATION_MAX_WORKERS"),
	}

	cfg.Calendar = CalendarConfig{
		DefaultDays: v.GetInt("CALENDAR_DEFAULT_DAYS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api/canvas")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "canvas_gateway")
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

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE_MAX_ENTRIES", 10000)
	v.SetDefault("CACHE_DEFAULT_TTL", "10m")
	v.SetDefault("CACHE_TTL_CURRENT_USER", "1h")
	v.SetDefault("CACHE_TTL_COURSES", "30m")
	v.SetDefault("CACHE_TTL_ANNOUNCEMENTS", "5m")
	v.SetDefault("CACHE_TTL_PROFESSORS", "1h")
	v.SetDefault("CACHE_TTL_ASSIGNMENTS", "10m")
	v.SetDefault("CACHE_TTL_COURSE_DATA", "30m")

	v.SetDefault("CANVAS_URL", "")
	v.SetDefault("CANVAS_API_KEY", "")
	v.SetDefault("CANVAS_HTTP_TIMEOUT", "30s")
	v.SetDefault("CANVAS_PER_PAGE", 100)
	v.SetDefault("CANVAS_RATE_LIMIT", 10)
	v.SetDefault("CANVAS_RATE_BURST", 20)
	v.SetDefault("CANVAS_BREAKER_ENABLED", true)
	v.SetDefault("CANVAS_CLIENT_CACHE_SIZE", 256)

	v.SetDefault("AGGREGATION_MAX_WORKERS", 10)
	v.SetDefault("CALENDAR_DEFAULT_DAYS", 14)
}

// isMissingFile tolerates a missing .env, which viper reports as a plain fs error
// when SetConfigFile is used.
func isMissingFile(err error) bool {
	return errors.Is(err, os.ErrNotExist)
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
