package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_BACKEND", "DB_PATH", "DATA_DIR", "STALE_AFTER", "LOG_LEVEL", "ADMIN_SECRET", "ADMIN_TOKEN_TTL", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.StorageBackend != BackendFallback {
		t.Errorf("StorageBackend = %s, want fallback", cfg.StorageBackend)
	}
	if cfg.StaleAfter != 720*time.Hour {
		t.Errorf("StaleAfter = %s, want 720h", cfg.StaleAfter)
	}
	if cfg.ResetEnabled() {
		t.Error("expected reset to be disabled without ADMIN_SECRET")
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr = %s, want :8080", cfg.Addr())
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("STALE_AFTER", "1h30m")
	t.Setenv("ADMIN_SECRET", "s3cret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Port != 9090 || cfg.StorageBackend != BackendSQLite {
		t.Errorf("got port %d backend %s", cfg.Port, cfg.StorageBackend)
	}
	if cfg.StaleAfter != 90*time.Minute {
		t.Errorf("StaleAfter = %s, want 1h30m", cfg.StaleAfter)
	}
	if !cfg.ResetEnabled() {
		t.Error("expected reset to be enabled")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown backend", "STORAGE_BACKEND", "postgres", "STORAGE_BACKEND"},
		{"port out of range", "PORT", "70000", "PORT"},
		{"port not a number", "PORT", "abc", "parse env:"},
		{"negative staleness", "STALE_AFTER", "-1h", "STALE_AFTER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
