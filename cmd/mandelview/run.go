package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/mandelview/internal/duckdb"
	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/render"
	"github.com/tinytelemetry/mandelview/internal/socketrpc"
	"github.com/tinytelemetry/mandelview/internal/tui"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// runTUI wires persistence, the render scheduler, the controller and the
// control socket around the Bubble Tea program.
func runTUI(cfg cliConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	presets, err := loadPresets(cfg.PresetsFile)
	if err != nil {
		return err
	}

	var (
		views   model.ViewStore
		history model.RenderLog
	)
	if cfg.Persist {
		store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
		if err != nil {
			return fmt.Errorf("failed to initialize DuckDB: %w", err)
		}
		defer store.Close()
		views, history = store, store

		cleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{RetentionDays: cfg.HistoryDays})
		if cleaner != nil {
			defer cleaner.Stop()
		}
	}

	raster := render.NewRaster(0, 0)
	sched := render.NewScheduler(raster, render.Config{
		Debounce:   cfg.Debounce,
		YieldPause: cfg.YieldPause,
		Log:        history,
	})
	defer sched.Close()

	ctrl, err := viewer.New(viewer.Options{
		Store:     views,
		Quality:   cfg.Quality,
		Palette:   cfg.Palette,
		Scheduler: sched,
		Presets:   presets,
	})
	if err != nil {
		return err
	}

	explorer := tui.NewExplorerPage(tui.ExplorerOptions{
		Controller:   ctrl,
		Scheduler:    sched,
		Raster:       raster,
		SnapshotDir:  cfg.SnapshotDir,
		ReverseWheel: cfg.ReverseScrollWheel,
	})
	app := tui.NewApp(explorer, tui.NewHistoryPage(history))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())

	bridge := tui.NewBridge()
	bridge.Attach(p.Send)

	if cfg.ControlSocket {
		sockServer := socketrpc.NewServer(cfg.SocketPath, bridge)
		if err := sockServer.Start(); err != nil {
			log.Printf("mandelview: control socket disabled: %v", err)
		} else {
			defer sockServer.Stop()
		}
	}
	// Runs before sockServer.Stop so in-flight calls return at once.
	defer bridge.Detach()

	log.Printf("mandelview: starting (quality %d, palette %s, config %q)", cfg.Quality, cfg.Palette, cfg.ConfigPath)
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("mandelview requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// loadPresets returns the built-in regions, overridden by the presets file
// when one is configured.
func loadPresets(path string) ([]viewer.Preset, error) {
	presets := viewer.BuiltinPresets()
	if path == "" {
		return presets, nil
	}
	extra, err := viewer.LoadPresets(path)
	if err != nil {
		return nil, err
	}
	return viewer.MergePresets(presets, extra), nil
}

// configureRuntimeLogger sends the log to a file; the terminal belongs to
// the TUI.
func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "mandelview")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(logDir, "mandelview.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}
