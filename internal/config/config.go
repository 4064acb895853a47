package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone AuthMode = "none" // No authentication required (default)
	AuthModeJWT  AuthMode = "jwt"  // Local accounts, bearer JWT on /api
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Pagination
		Cache
		Auth
		RateLimit
		ReadOnly
		Audit
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		AppName                  string // Prefix for X-<app>-alert style headers
		LogLevel                 string
		LogFormat                string // "text" or "json"
	}
	Database struct {
		Driver       DatabaseDriver
		Path         string // SQLite file
		DSN          string // PostgreSQL connection string
		MaxOpenConns int
		LogLevel     string // gorm logger: silent, error, warn, info
	}
	Pagination struct {
		DefaultSize int
		MaxSize     int
	}
	Cache struct {
		RedisAddr     string // Empty disables the entity cache
		RedisPassword string
		TTL           time.Duration
	}
	Auth struct {
		Mode                    AuthMode
		JWTSecret               string // base64; generated at startup if empty
		TokenValidity           time.Duration
		TokenValidityRememberMe time.Duration
		BcryptCost              int

		// Login throttling
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}
	RateLimit struct {
		Enabled bool
		RPS     float64
		Burst   int
	}
	ReadOnly struct {
		Enabled bool // Reject writes under /api
	}
	Audit struct {
		Enabled         bool
		RetentionDays   int
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("app_name", DefaultAppName)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_max_open_conns", 10)
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("pagination_default_size", DefaultPageSize)
	v.SetDefault("pagination_max_size", MaxPageSize)

	v.SetDefault("cache_redis_addr", "")
	v.SetDefault("cache_redis_password", "")
	v.SetDefault("cache_ttl", "1h")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_jwt_secret", "")                     // Generated if empty
	v.SetDefault("auth_token_validity", "24h")              // 1 day
	v.SetDefault("auth_token_validity_remember_me", "720h") // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("rate_limit_enabled", false)
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)

	v.SetDefault("read_only_mode", false)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			AppName:                  v.GetString("APP_NAME"),
			LogLevel:                 v.GetString("LOG_LEVEL"),
			LogFormat:                v.GetString("LOG_FORMAT"),
		},
		Database: Database{
			Driver:       DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:         v.GetString("DATABASE_PATH"),
			DSN:          v.GetString("DATABASE_DSN"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			LogLevel:     v.GetString("DATABASE_LOG_LEVEL"),
		},
		Pagination: Pagination{
			DefaultSize: v.GetInt("PAGINATION_DEFAULT_SIZE"),
			MaxSize:     v.GetInt("PAGINATION_MAX_SIZE"),
		},
		Cache: Cache{
			RedisAddr:     v.GetString("CACHE_REDIS_ADDR"),
			RedisPassword: v.GetString("CACHE_REDIS_PASSWORD"),
			TTL:           v.GetDuration("CACHE_TTL"),
		},
		Auth: Auth{
			Mode:                    AuthMode(v.GetString("AUTH_MODE")),
			JWTSecret:               v.GetString("AUTH_JWT_SECRET"),
			TokenValidity:           v.GetDuration("AUTH_TOKEN_VALIDITY"),
			TokenValidityRememberMe: v.GetDuration("AUTH_TOKEN_VALIDITY_REMEMBER_ME"),
			BcryptCost:              v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts:        v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:         v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:         v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		RateLimit: RateLimit{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
		},
		ReadOnly: ReadOnly{
			Enabled: v.GetBool("READ_ONLY_MODE"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
