package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "salescrm.db"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultJWTAccessTTL      = "1h"
	defaultRefreshTTL        = "168h"
	defaultConversionMode    = ConversionTransactional
	defaultConversionLockTTL = "30s"
	defaultResendCooldown    = "1m"
)

const (
	ConversionTransactional = "transactional"
	ConversionSequential    = "sequential"
)

type AppConfig struct {
	AppEnv      string
	HTTPAddr    string
	CORSOrigins []string
	DatabaseURL string
	AutoMigrate bool

	RedisAddr string
	RedisPass string
	RedisDB   int

	JWTSecret    string
	JWTAccessTTL time.Duration
	RefreshTTL   time.Duration

	RequireEmailConfirmation   bool
	ConfirmationResendCooldown time.Duration

	ConversionMode       string
	ConversionCompensate bool
	ConversionLockTTL    time.Duration

	Log LogConfig
}

type LogConfig struct {
	Level    string
	Dev      bool
	FilePath string
	MaxAge   time.Duration
}

// Load reads a .env file when present and then the process environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.AutoMigrate = parseBoolEnv("DB_AUTO_MIGRATE", "true")

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPass = os.Getenv("REDIS_PASS")

	var err error
	cfg.RedisDB, err = parseIntEnv("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL, err = parseDurationEnv("REFRESH_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg.RequireEmailConfirmation = parseBoolEnv("AUTH_REQUIRE_EMAIL_CONFIRMATION", "false")
	cfg.ConfirmationResendCooldown, err = parseDurationEnv("AUTH_CONFIRMATION_RESEND_COOLDOWN", defaultResendCooldown)
	if err != nil {
		return nil, err
	}

	cfg.ConversionMode = strings.ToLower(strings.TrimSpace(getEnv("CONVERSION_MODE", defaultConversionMode)))
	cfg.ConversionCompensate = parseBoolEnv("CONVERSION_COMPENSATE", "false")
	cfg.ConversionLockTTL, err = parseDurationEnv("CONVERSION_LOCK_TTL", defaultConversionLockTTL)
	if err != nil {
		return nil, err
	}

	cfg.Log = LogConfig{
		Dev:      parseBoolEnv("LOG_DEV", "false"),
		FilePath: strings.TrimSpace(os.Getenv("LOG_FILE")),
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.Log.Level == "" {
		if cfg.Log.Dev {
			cfg.Log.Level = "debug"
		} else {
			cfg.Log.Level = "info"
		}
	}
	cfg.Log.MaxAge, err = parseDurationEnv("LOG_MAX_AGE", "168h")
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *AppConfig) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return fmt.Errorf("REFRESH_TTL must be > 0")
	}
	if cfg.RefreshTTL < cfg.JWTAccessTTL {
		return fmt.Errorf("REFRESH_TTL must not be shorter than JWT_ACCESS_TTL")
	}
	if cfg.ConversionLockTTL <= 0 {
		return fmt.Errorf("CONVERSION_LOCK_TTL must be > 0")
	}
	if cfg.ConversionMode != ConversionTransactional && cfg.ConversionMode != ConversionSequential {
		return fmt.Errorf("CONVERSION_MODE must be one of: transactional, sequential")
	}
	if cfg.ConversionCompensate && cfg.ConversionMode != ConversionSequential {
		return fmt.Errorf("CONVERSION_COMPENSATE only applies to CONVERSION_MODE=sequential")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.RedisAddr == "" {
			return fmt.Errorf("in prod/release REDIS_ADDR must be set")
		}
	}

	return nil
}

// IsProd reports whether the config targets a production-like environment.
func (c *AppConfig) IsProd() bool { return isProdLike(c.AppEnv) }

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
