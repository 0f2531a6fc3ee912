// Package config loads the service configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Domain         string
	AllowedOrigins string
	BodyLimitBytes int
	RateLimitMax   int
	RateLimitWin   time.Duration
	LogLevel       slog.Level

	DB    DBConfig
	JWT   JWTConfig
	Email EmailConfig
	Redis RedisConfig
}

type DBConfig struct {
	Driver   string // postgres | mysql | sqlite
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Insecure skips TLS verification outside production.
	Insecure bool
}

type RedisConfig struct {
	URL    string
	PDFTTL time.Duration
}

// Load reads .env (if present, or the given path) and the environment.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	// Fiber default BodyLimit is 4 MiB; logos arrive as data URLs so allow override.
	bodyLimit := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimit <= 0 {
		bodyLimit = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if strings.TrimSpace(secret) == "" {
		secret = os.Getenv("JWT_SECRET")
	}

	cfg := &Config{
		Port:           envString("PORT", "8080"),
		Domain:         strings.TrimRight(envString("DOMAIN", "http://localhost:8080"), "/"),
		AllowedOrigins: envString("ALLOWED_ORIGINS", "*"),
		BodyLimitBytes: bodyLimit,
		RateLimitMax:   envInt("RATE_LIMIT_MAX", 60),
		RateLimitWin:   time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		LogLevel:       parseLevel(os.Getenv("LOG_LEVEL")),
		DB: DBConfig{
			Driver:   strings.ToLower(envString("DB_DRIVER", "postgres")),
			DSN:      os.Getenv("DB_DSN"),
			Host:     envString("DB_HOST", "db"),
			Port:     envInt("DB_PORT", 5432),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		JWT: JWTConfig{
			Secret: secret,
			TTL:    24 * time.Hour,
		},
		Email: EmailConfig{
			Host:     os.Getenv("EMAIL_SERVER_HOST"),
			Port:     envInt("EMAIL_SERVER_PORT", 465),
			User:     os.Getenv("EMAIL_SERVER_USER"),
			Password: os.Getenv("EMAIL_SERVER_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
			Insecure: os.Getenv("APP_ENV") != "production",
		},
		Redis: RedisConfig{
			URL:    os.Getenv("REDIS_URL"),
			PDFTTL: time.Duration(envInt("PDF_CACHE_TTL_SECONDS", 3600)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("JWT secret not configured (set JWT_SECRET_KEY or JWT_SECRET)")
	}
	return nil
}

// DSNString builds the driver DSN unless DB_DSN was given verbatim.
func (d DBConfig) DSNString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case "sqlite":
		return "invoices.db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			d.Host, d.User, d.Password, d.Name, d.Port)
	}
}

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
