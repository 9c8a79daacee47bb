package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.APIAddr != "127.0.0.1:3400" {
		t.Errorf("api-addr = %q, want 127.0.0.1:3400", cfg.APIAddr)
	}
	if cfg.DefaultWidth != 960 || cfg.DefaultHeight != 540 {
		t.Errorf("default frame = %dx%d, want 960x540", cfg.DefaultWidth, cfg.DefaultHeight)
	}
	if cfg.HistoryDays != defaultHistoryDays {
		t.Errorf("history-days = %d, want %d", cfg.HistoryDays, defaultHistoryDays)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
api-port: 8080
query-timeout: 2s
default-width: 320
default-height: 200
origin-patterns:
  - localhost:*
  - example.com
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.APIAddr != "127.0.0.1:8080" {
		t.Errorf("api-addr = %q, want 127.0.0.1:8080", cfg.APIAddr)
	}
	if cfg.QueryTimeout != 2*time.Second {
		t.Errorf("query-timeout = %v, want 2s", cfg.QueryTimeout)
	}
	if diff := cmp.Diff([]string{"localhost:*", "example.com"}, cfg.OriginPatterns); diff != "" {
		t.Errorf("origin-patterns mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("api-port: 70000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig() accepted api-port 70000")
	}
}
