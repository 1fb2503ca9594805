// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes site settings such as
// server timeouts, logging, the database, the admin session, outbound SMTP,
// the Overpass branch lookup, caching, analytics, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "vamgard")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LogFileConfig configures the optional rotating file sink.
type LogFileConfig struct {
	Path       string // LOG_FILE; empty disables the file sink
	MaxSizeMB  int    // LOG_FILE_MAX_SIZE_MB
	MaxBackups int    // LOG_FILE_MAX_BACKUPS
	MaxAgeDays int    // LOG_FILE_MAX_AGE_DAYS
}

// DBConfig selects the database driver and its location.
type DBConfig struct {
	Driver string // sqlite|mysql
	Path   string // SQLite file
	DSN    string // MySQL DSN
}

// SessionConfig configures the admin session cookie.
type SessionConfig struct {
	Secret      string
	CookieName  string
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

// AdminConfig holds the bootstrap admin account created on first start.
type AdminConfig struct {
	Username    string
	Password    string
	DisplayName string
}

// SMTPConfig configures outbound mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

// OverpassConfig configures the nearby-branch lookup.
type OverpassConfig struct {
	URL     string
	Timeout time.Duration
	RadiusM int
}

// RedisConfig configures the optional cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// AnalyticsConfig configures visit recording and view-count deduplication.
type AnalyticsConfig struct {
	Enabled           bool
	DedupWindow       time.Duration
	IgnoredExtensions []string // nil keeps the built-in asset list
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	TrustedProxies    []string

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	LogFile        LogFileConfig
	SwaggerEnabled bool // enable Swagger UI route

	// Site
	SiteURL  string // absolute origin used in the sitemap
	SiteName string

	DB DBConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	Session   SessionConfig
	Admin     AdminConfig
	SMTP      SMTPConfig
	Overpass  OverpassConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		TrustedProxies:    splitCSV(getenv("TRUSTED_PROXIES", "")),

		// Logging / Docs
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),
		LogFile: LogFileConfig{
			Path:       getenv("LOG_FILE", ""),
			MaxSizeMB:  getint("LOG_FILE_MAX_SIZE_MB", 50),
			MaxBackups: getint("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays: getint("LOG_FILE_MAX_AGE_DAYS", 30),
		},
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		// Site
		SiteURL:  normalizeSiteURL(getenv("SITE_URL", "https://vamgard.ir")),
		SiteName: getenv("SITE_NAME", "وام‌گرد"),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "vamgard.db"),
			DSN:    getenv("DB_DSN", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		Session: SessionConfig{
			Secret:      getenv("SESSION_SECRET", ""),
			CookieName:  getenv("SESSION_COOKIE", "vamgard_admin"),
			TTL:         getdur("SESSION_TTL", 8*time.Hour),
			RememberTTL: getdur("SESSION_REMEMBER_TTL", 30*24*time.Hour),
			Secure:      getbool("SESSION_SECURE", false),
		},
		Admin: AdminConfig{
			Username:    getenv("ADMIN_USERNAME", "admin"),
			Password:    getenv("ADMIN_PASSWORD", "admin123"),
			DisplayName: getenv("ADMIN_DISPLAY_NAME", "مدیر سیستم"),
		},
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", "vamgard.org"),
			Port:     getint("SMTP_PORT", 465),
			Username: getenv("SMTP_USERNAME", "info@vamgard.org"),
			Password: getenv("SMTP_PASSWORD", ""),
			FromName: getenv("SMTP_FROM_NAME", "وام‌گرد"),
		},
		Overpass: OverpassConfig{
			URL:     getenv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			Timeout: getdur("OVERPASS_TIMEOUT", 15*time.Second),
			RadiusM: getint("OVERPASS_RADIUS_M", 5000),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
			TTL:      getdur("CACHE_TTL", time.Hour),
		},
		Analytics: AnalyticsConfig{
			Enabled:           getbool("ANALYTICS_ENABLED", true),
			DedupWindow:       getdur("ANALYTICS_DEDUP_WINDOW", 24*time.Hour),
			IgnoredExtensions: splitCSV(getenv("ANALYTICS_IGNORED_EXTENSIONS", "")),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "vamgard"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "sqlite3" {
		cfg.DB.Driver = "sqlite"
	}
	if cfg.Session.Secret == "" && cfg.GinMode != "release" {
		// dev only; release builds must set SESSION_SECRET
		cfg.Session.Secret = "vamgard-dev-session-secret"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "mysql":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DB_DSN is required when DB_DRIVER=mysql")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, mysql")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.Session.Secret == "" {
		return cfg, errors.New("SESSION_SECRET must be set in release mode")
	}
	if cfg.Session.TTL <= 0 || cfg.Session.RememberTTL <= 0 {
		return cfg, errors.New("SESSION_TTL and SESSION_REMEMBER_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" {
		return cfg, errors.New("SESSION_COOKIE must not be empty")
	}
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return cfg, errors.New("SMTP_PORT must be in 1..65535")
	}
	if cfg.Overpass.Timeout <= 0 {
		return cfg, errors.New("OVERPASS_TIMEOUT must be > 0")
	}
	if cfg.Overpass.RadiusM <= 0 {
		return cfg, errors.New("OVERPASS_RADIUS_M must be > 0")
	}
	if cfg.Redis.TTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.Analytics.DedupWindow <= 0 {
		return cfg, errors.New("ANALYTICS_DEDUP_WINDOW must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeSiteURL trims whitespace and trailing slashes so paths can be appended.
func normalizeSiteURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u != "" && !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}
