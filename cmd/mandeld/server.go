package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/mandelview/internal/duckdb"
	"github.com/tinytelemetry/mandelview/internal/httpserver"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// runServer starts the HTTP render service and blocks until SIGINT/SIGTERM.
func runServer(cfg appConfig) error {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	presets := viewer.BuiltinPresets()
	if cfg.PresetsFile != "" {
		extra, err := viewer.LoadPresets(cfg.PresetsFile)
		if err != nil {
			return err
		}
		presets = viewer.MergePresets(presets, extra)
	}

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	// Render history expiry
	retentionCleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		RetentionDays: cfg.HistoryDays,
	})
	if retentionCleaner != nil {
		defer retentionCleaner.Stop()
	}

	apiServer := httpserver.NewServer(httpserver.Config{
		Addr:           cfg.APIAddr,
		DefaultWidth:   cfg.DefaultWidth,
		DefaultHeight:  cfg.DefaultHeight,
		MaxFramePixels: cfg.MaxFramePixels,
		Debounce:       cfg.Debounce,
		YieldPause:     cfg.YieldPause,
		OriginPatterns: cfg.OriginPatterns,
		Presets:        presets,
	}, store)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg, len(presets))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return apiServer.Stop()
	})

	if err := g.Wait(); err != nil {
		log.Printf("mandeld: shutdown: %v", err)
	}
	log.Printf("mandeld: stopped")
	return nil
}

func printStartupBanner(cfg appConfig, presets int) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	var lines []string
	lines = append(lines, "")
	lines = append(lines, "    "+cyan.Bold(true).Render("mandeld")+" "+dim.Render("v"+version))
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Endpoints"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render("http://"+cfg.APIAddr+"/api")))
	lines = append(lines, fmt.Sprintf("    %s  Stream         %s", check, cyan.Render("ws://"+cfg.APIAddr+"/api/stream")))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Rendering"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Default frame  %s", check, dim.Render(fmt.Sprintf("%dx%d", cfg.DefaultWidth, cfg.DefaultHeight))))
	lines = append(lines, fmt.Sprintf("    %s  Presets        %s", check, dim.Render(fmt.Sprintf("%d regions", presets))))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	if cfg.DBPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  DuckDB         %s", check, dim.Render(shortenPath(cfg.DBPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  DuckDB         %s", dot, dim.Render("in-memory")))
	}
	if cfg.HistoryDays > 0 {
		lines = append(lines, fmt.Sprintf("    %s  History        %s", check, dim.Render(fmt.Sprintf("%d days", cfg.HistoryDays))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  History        %s", dot, dim.Render("kept forever")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
