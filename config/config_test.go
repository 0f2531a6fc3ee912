package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("BODY_LIMIT_BYTES", "")
	t.Setenv("BODY_LIMIT_MB", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DB.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", cfg.DB.Driver)
	}
	if cfg.BodyLimitBytes != 4*1024*1024 {
		t.Errorf("BodyLimitBytes = %d", cfg.BodyLimitBytes)
	}
	if cfg.Email.Port != 465 {
		t.Errorf("Email.Port = %d, want 465", cfg.Email.Port)
	}
	if cfg.JWT.TTL != 24*time.Hour {
		t.Errorf("JWT.TTL = %v", cfg.JWT.TTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "fallback")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("BODY_LIMIT_MB", "8")
	t.Setenv("DOMAIN", "https://invoices.example.com/")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JWT.Secret != "fallback" {
		t.Errorf("Secret = %q", cfg.JWT.Secret)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.DSNString() != "invoices.db" {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.BodyLimitBytes != 8*1024*1024 {
		t.Errorf("BodyLimitBytes = %d", cfg.BodyLimitBytes)
	}
	if cfg.Domain != "https://invoices.example.com" {
		t.Errorf("Domain = %q", cfg.Domain)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT secret") {
		t.Errorf("Load() error = %v, want JWT secret error", err)
	}
}

func TestDSNString(t *testing.T) {
	pg := DBConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "inv"}
	if got := pg.DSNString(); !strings.Contains(got, "host=db") || !strings.Contains(got, "dbname=inv") {
		t.Errorf("postgres DSN = %q", got)
	}
	my := DBConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", Name: "inv"}
	if got := my.DSNString(); got != "u:p@tcp(db:3306)/inv?charset=utf8mb4&parseTime=True&loc=UTC" {
		t.Errorf("mysql DSN = %q", got)
	}
	raw := DBConfig{Driver: "postgres", DSN: "postgres://x"}
	if raw.DSNString() != "postgres://x" {
		t.Errorf("raw DSN not used")
	}
}
