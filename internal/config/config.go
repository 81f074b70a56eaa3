package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication, the operator is the administrator (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Media
		Documentation
		Auth
		Audit
		Tasks
		Maintenance
		Log
	}

	HTTP struct {
		Port      int32
		Host      string
		PublicURL string // Base URL prepended to media URLs, empty for host-relative URLs
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Media struct {
		Dir            string
		URLPrefix      string
		MaxUploadBytes int64
	}
	Documentation struct {
		EnableChanges    bool   // Shows the administration form and allows uploads
		VideoURLOverride string // When set, replaces the resolved video URL
		PDFURLOverride   string // When set, replaces the resolved PDF URL
		BannerURL        string
		ContactURL       string
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Log struct {
		Level       string
		Development bool
	}
)

// NewConfig reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment variables win.
func NewConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("public_url", "")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Media library defaults
	v.SetDefault("media_dir", DefaultMediaDir)
	v.SetDefault("media_url_prefix", DefaultMediaURLPrefix)
	v.SetDefault("media_max_upload_bytes", 512<<20) // 512 MiB

	// Documentation defaults
	v.SetDefault("docs_enable_changes", true)
	v.SetDefault("docs_video_url_override", "")
	v.SetDefault("docs_pdf_url_override", "")
	v.SetDefault("docs_banner_url", "")
	v.SetDefault("docs_contact_url", "https://webdevstudios.com/contact/")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "0 3 * * *")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	return &Config{
		HTTP: HTTP{
			Port:      v.GetInt32("PORT"),
			Host:      v.GetString("HOST"),
			PublicURL: v.GetString("PUBLIC_URL"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Media: Media{
			Dir:            v.GetString("MEDIA_DIR"),
			URLPrefix:      v.GetString("MEDIA_URL_PREFIX"),
			MaxUploadBytes: v.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
		},
		Documentation: Documentation{
			EnableChanges:    v.GetBool("DOCS_ENABLE_CHANGES"),
			VideoURLOverride: v.GetString("DOCS_VIDEO_URL_OVERRIDE"),
			PDFURLOverride:   v.GetString("DOCS_PDF_URL_OVERRIDE"),
			BannerURL:        v.GetString("DOCS_BANNER_URL"),
			ContactURL:       v.GetString("DOCS_CONTACT_URL"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
	}
}
