package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/mandelview/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCLIConfigDefaults(t *testing.T) {
	cfg, err := loadCLIConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("loadCLIConfig() error = %v", err)
	}
	if cfg.Quality != model.DefaultQuality || cfg.Palette != model.DefaultPalette {
		t.Errorf("quality/palette = %d/%s, want defaults", cfg.Quality, cfg.Palette)
	}
	if cfg.Debounce != model.DefaultDebounce {
		t.Errorf("debounce = %v, want %v", cfg.Debounce, model.DefaultDebounce)
	}
	if !cfg.Persist || !cfg.ControlSocket {
		t.Error("persistence and control socket should default to on")
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join("mandelview", "mandelview.duckdb")) {
		t.Errorf("db-path = %q", cfg.DBPath)
	}
}

func TestLoadCLIConfigFile(t *testing.T) {
	path := writeConfig(t, `
quality: 25
palette: grayscale
debounce: 200ms
persist: false
reverse-scroll-wheel: true
snapshot-dir: ~/shots
`)
	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig() error = %v", err)
	}
	if cfg.Quality != 25 || cfg.Palette != "grayscale" {
		t.Errorf("quality/palette = %d/%s, want 25/grayscale", cfg.Quality, cfg.Palette)
	}
	if cfg.Debounce != 200*time.Millisecond {
		t.Errorf("debounce = %v, want 200ms", cfg.Debounce)
	}
	if cfg.Persist || !cfg.ReverseScrollWheel {
		t.Errorf("persist/reverse = %v/%v, want false/true", cfg.Persist, cfg.ReverseScrollWheel)
	}
	if strings.HasPrefix(cfg.SnapshotDir, "~") || !strings.HasSuffix(cfg.SnapshotDir, "shots") {
		t.Errorf("snapshot-dir = %q, want expanded home", cfg.SnapshotDir)
	}
	if cfg.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", cfg.ConfigPath, path)
	}
}

func TestLoadCLIConfigRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"quality": "quality: 150\n",
		"palette": "palette: sepia\n",
	}
	for name, body := range tests {
		if _, err := loadCLIConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s: loadCLIConfig() succeeded, want error", name)
		}
	}
}

func TestLoadPresetsMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yml")
	body := `
presets:
  - name: seahorse valley
    xmin: -0.75
    xmax: -0.74
    ymin: 0.1
    ymax: 0.11
  - name: Home
    xmin: -2.5
    xmax: 1
    ymin: -1
    ymax: 1
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	presets, err := loadPresets(path)
	if err != nil {
		t.Fatalf("loadPresets() error = %v", err)
	}
	if got := len(presets); got != 7 {
		t.Fatalf("len(presets) = %d, want 7", got)
	}
	if presets[0].XMin != -0.75 {
		t.Errorf("seahorse valley not replaced: %+v", presets[0])
	}

	if _, err := loadPresets(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("missing presets file accepted")
	}
}
