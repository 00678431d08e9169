package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

// setGoodEnv seeds a passing configuration, which individual tests then break.
func setGoodEnv(t *testing.T) {
	t.Helper()

	t.Setenv("DATABASE_URL", "postgres://broker:pw@localhost:5432/metalbroker")
	t.Setenv("PORT", "7777")
	t.Setenv("LISTEN_HOST", "127.0.0.1")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("AUTH_ENABLE", "true")
	t.Setenv("RECONCILE_INTERVAL", "60s")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000")
}

func TestLoad_Defaults(t *testing.T) {
	setGoodEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("LISTEN_HOST", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("RECONCILE_INTERVAL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "7777" {
		t.Errorf("Port = %q, want 7777", cfg.Port)
	}
	if cfg.ListenHost != "127.0.0.1" {
		t.Errorf("ListenHost = %q, want 127.0.0.1", cfg.ListenHost)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.ReconcileInterval != time.Minute {
		t.Errorf("ReconcileInterval = %s, want 1m", cfg.ReconcileInterval)
	}
	if cfg.Addr() != "127.0.0.1:7777" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"missing database url", "DATABASE_URL", "", "DATABASE_URL is required"},
		{"bad database scheme", "DATABASE_URL", "mysql://localhost/db", "scheme must be postgres"},
		{"remote sslmode disable", "DATABASE_URL", "postgres://u:p@db.example.com/x?sslmode=disable", "sslmode=disable"},
		{"bad port", "PORT", "not-a-port", "PORT must be a valid integer"},
		{"port out of range", "PORT", "70000", "between 1 and 65535"},
		{"public listen host", "LISTEN_HOST", "203.0.113.9", "LISTEN_HOST"},
		{"short jwt secret", "JWT_SECRET", "tooshort", "at least 32 characters"},
		{"wildcard cors", "CORS_ORIGINS", "*", "wildcard"},
		{"glob cors", "CORS_ORIGINS", "http://*.example.com", "glob"},
		{"schemeless cors", "CORS_ORIGINS", "localhost:3000", "scheme and host"},
		{"sub-second interval", "RECONCILE_INTERVAL", "100ms", "at least 1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setGoodEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_AuthDisabledSkipsSecretCheck(t *testing.T) {
	setGoodEnv(t)
	t.Setenv("AUTH_ENABLE", "false")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AuthEnabled {
		t.Error("AuthEnabled should be false")
	}
}

func TestLoad_TrimsCORSOrigins(t *testing.T) {
	setGoodEnv(t)
	t.Setenv("CORS_ORIGINS", "http://a.example.com, http://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example.com" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("super-sensitive")

	if got := fmt.Sprintf("%s", s); got != "[REDACTED]" {
		t.Errorf("%%s = %q", got)
	}
	if got := fmt.Sprintf("%v", s); got != "[REDACTED]" {
		t.Errorf("%%v = %q", got)
	}
	if got := fmt.Sprintf("%#v", s); got != "[REDACTED]" {
		t.Errorf("%%#v = %q", got)
	}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"[REDACTED]"` {
		t.Errorf("json = %s", b)
	}

	if s.Value() != "super-sensitive" {
		t.Errorf("Value lost the secret: %q", s.Value())
	}
}
