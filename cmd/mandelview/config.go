package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/palette"
	"github.com/tinytelemetry/mandelview/internal/socketrpc"
)

const (
	defaultQueryTimeout = 5 * time.Second
	defaultHistoryDays  = 30 // days, 0 = keep forever
)

// cliConfig holds the explorer configuration.
type cliConfig struct {
	Quality            int           `mapstructure:"quality"`
	Palette            string        `mapstructure:"palette"`
	Debounce           time.Duration `mapstructure:"debounce"`
	YieldPause         time.Duration `mapstructure:"yield-pause"`
	Persist            bool          `mapstructure:"persist"`
	DBPath             string        `mapstructure:"db-path"`
	QueryTimeout       time.Duration `mapstructure:"query-timeout"`
	HistoryDays        int           `mapstructure:"history-days"`
	ControlSocket      bool          `mapstructure:"control-socket"`
	SocketPath         string        `mapstructure:"socket-path"`
	PresetsFile        string        `mapstructure:"presets-file"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
	SnapshotDir        string        `mapstructure:"snapshot-dir"`
	ConfigPath         string        `mapstructure:"-"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("MANDELVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("quality", model.DefaultQuality)
	v.SetDefault("palette", model.DefaultPalette)
	v.SetDefault("debounce", model.DefaultDebounce)
	v.SetDefault("yield-pause", model.DefaultYieldPause)
	v.SetDefault("persist", true)
	v.SetDefault("db-path", filepath.Join(home, ".local", "share", "mandelview", "mandelview.duckdb"))
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("history-days", defaultHistoryDays)
	v.SetDefault("control-socket", true)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("presets-file", "")
	v.SetDefault("reverse-scroll-wheel", false)
	v.SetDefault("snapshot-dir", filepath.Join(home, "Pictures", "mandelview"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "mandelview", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.Quality < model.MinQuality || cfg.Quality > model.MaxQuality {
		return cfg, fmt.Errorf("invalid quality: %d (want %d..%d)", cfg.Quality, model.MinQuality, model.MaxQuality)
	}
	if _, err := palette.ByName(cfg.Palette); err != nil {
		return cfg, err
	}
	if cfg.Debounce < 0 || cfg.YieldPause < 0 {
		return cfg, fmt.Errorf("debounce and yield-pause must not be negative")
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.PresetsFile = expandHome(cfg.PresetsFile, home)
	cfg.SnapshotDir = expandHome(cfg.SnapshotDir, home)
	cfg.SocketPath = expandHome(cfg.SocketPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
