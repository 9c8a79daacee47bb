package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/mandelview/internal/model"
)

const (
	defaultBindHost       = "127.0.0.1"
	defaultAPIPort        = 3400
	defaultQueryTimeout   = 5 * time.Second
	defaultMaxFramePixels = 4096 * 4096
	defaultHistoryDays    = 30 // days, 0 = disabled
)

// appConfig is the render service configuration.
type appConfig struct {
	APIPort        int           `mapstructure:"api-port"`
	APIAddr        string        `mapstructure:"api-addr"`
	DBPath         string        `mapstructure:"db-path"`
	QueryTimeout   time.Duration `mapstructure:"query-timeout"`
	DefaultWidth   int           `mapstructure:"default-width"`
	DefaultHeight  int           `mapstructure:"default-height"`
	MaxFramePixels int           `mapstructure:"max-frame-pixels"`
	Debounce       time.Duration `mapstructure:"debounce"`
	YieldPause     time.Duration `mapstructure:"yield-pause"`
	OriginPatterns []string      `mapstructure:"origin-patterns"`
	PresetsFile    string        `mapstructure:"presets-file"`
	HistoryDays    int           `mapstructure:"history-days"`
	ConfigPath     string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("MANDELVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("api-addr", "")
	v.SetDefault("db-path", filepath.Join(home, ".local", "share", "mandelview", "mandeld.duckdb"))
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("default-width", model.DefaultFrameWidth)
	v.SetDefault("default-height", model.DefaultFrameHeight)
	v.SetDefault("max-frame-pixels", defaultMaxFramePixels)
	v.SetDefault("debounce", model.DefaultDebounce)
	v.SetDefault("yield-pause", model.DefaultYieldPause)
	v.SetDefault("origin-patterns", []string{})
	v.SetDefault("presets-file", "")
	v.SetDefault("history-days", defaultHistoryDays)

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

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.DefaultWidth <= 0 || cfg.DefaultHeight <= 0 {
		return cfg, fmt.Errorf("invalid default frame size %dx%d", cfg.DefaultWidth, cfg.DefaultHeight)
	}
	if cfg.MaxFramePixels < cfg.DefaultWidth*cfg.DefaultHeight {
		return cfg, fmt.Errorf("max-frame-pixels %d is smaller than the default frame", cfg.MaxFramePixels)
	}

	// Expand ~ in paths
	if strings.HasPrefix(cfg.DBPath, "~/") {
		cfg.DBPath = filepath.Join(home, cfg.DBPath[2:])
	}
	if strings.HasPrefix(cfg.PresetsFile, "~/") {
		cfg.PresetsFile = filepath.Join(home, cfg.PresetsFile[2:])
	}

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}
