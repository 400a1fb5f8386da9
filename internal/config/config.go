package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development")

type Config struct {
	Env  string
	Port string

	LogMode string

	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	SendGrid SendGridConfig
	Storage  StorageConfig

	CORSAllowedOrigins []string

	ReminderSweepInterval time.Duration
	ReportLocation        *time.Location

	RateLimitPerMinute       int
	ReportRateLimitPerMinute int
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN is a libpq-style URL understood by both the pgx stdlib driver and lib/pq.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	CookieSecure   bool
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type StorageConfig struct {
	GCSBucket          string
	GCSCredentialsFile string
	PublicBaseURL      string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the process environment, seeded from a .env file when present.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	env := strings.ToLower(getEnv("APP_ENV", "development"))

	cfg := &Config{
		Env:     env,
		Port:    getEnv("PORT", "8080"),
		LogMode: getEnv("LOG_MODE", env),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverPgx)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTIssuer: getEnv("JWT_ISSUER", "haircarelog"),
		},
		SendGrid: SendGridConfig{
			APIKey:    strings.TrimSpace(os.Getenv("SENDGRID_API_KEY")),
			FromEmail: strings.TrimSpace(os.Getenv("SENDGRID_FROM_EMAIL")),
			FromName:  getEnv("SENDGRID_FROM_NAME", "HairCareLog"),
		},
		Storage: StorageConfig{
			GCSBucket:          strings.TrimSpace(os.Getenv("GCS_BUCKET")),
			GCSCredentialsFile: strings.TrimSpace(os.Getenv("GCS_CREDENTIALS_FILE")),
			PublicBaseURL:      strings.TrimRight(strings.TrimSpace(os.Getenv("GCS_PUBLIC_BASE_URL")), "/"),
		},
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.Redis.Enabled, err = getBool("REDIS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Auth.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Auth.CookieSecure, err = getBool("COOKIE_SECURE", env == "production"); err != nil {
		return nil, err
	}
	if cfg.ReminderSweepInterval, err = getDuration("REMINDER_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.ReportRateLimitPerMinute, err = getInt("REPORT_RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return nil, err
	}

	tz := getEnv("REPORT_TIMEZONE", "UTC")
	cfg.ReportLocation, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: invalid REPORT_TIMEZONE %q: %w", tz, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPgx, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}

	if c.Auth.JWTSecret == "" {
		if c.Env != "development" {
			return ErrMissingJWTSecret
		}
		c.Auth.JWTSecret = "dev-only-insecure-secret"
	}

	if c.ReminderSweepInterval <= 0 {
		return fmt.Errorf("config: REMINDER_SWEEP_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
