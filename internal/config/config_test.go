package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DatabasePath != defaultDatabasePath {
		t.Fatalf("expected default path %q, got %q", defaultDatabasePath, cfg.DatabasePath)
	}
	if cfg.BusyTimeout != 5*time.Second {
		t.Fatalf("expected 5s busy timeout, got %s", cfg.BusyTimeout)
	}
	if cfg.HTTPAddress != defaultHTTPAddress || cfg.LogLevel != defaultLogLevel {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("NOTEBOT_DATABASE_PATH", "/var/lib/notebot/state.db")
	t.Setenv("NOTEBOT_DATABASE_BUSY_TIMEOUT_MS", "250")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DatabasePath != "/var/lib/notebot/state.db" {
		t.Fatalf("unexpected path %q", cfg.DatabasePath)
	}
	if cfg.BusyTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected busy timeout %s", cfg.BusyTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    any
		expected string
	}{
		{name: "blank-path", key: "database.path", value: "  ", expected: "database.path"},
		{name: "zero-timeout", key: "database.busy_timeout_ms", value: 0, expected: "busy_timeout_ms"},
		{name: "negative-timeout", key: "database.busy_timeout_ms", value: -10, expected: "busy_timeout_ms"},
		{name: "blank-address", key: "http.address", value: "", expected: "http.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configViper := NewViper()
			configViper.Set(tt.key, tt.value)
			_, err := Load(configViper)
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Fatalf("expected error mentioning %s, got %v", tt.expected, err)
			}
		})
	}
}
