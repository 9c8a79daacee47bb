// Package httpserver exposes the renderer over HTTP: synchronous PNG frames,
// point samples, the saved view, render history and a websocket stream that
// drives an interactive session.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/mandelview/internal/model"
	"github.com/tinytelemetry/mandelview/internal/viewer"
)

// Store is the persistence contract required by the HTTP API.
type Store interface {
	model.Store
	RenderCount() (int64, error)
}

// Config tunes the server. Zero values use defaults.
type Config struct {
	Addr           string
	DefaultWidth   int
	DefaultHeight  int
	MaxFramePixels int
	// Stream sessions use these for their schedulers.
	Debounce   time.Duration
	YieldPause time.Duration
	// OriginPatterns are passed to the websocket handshake.
	OriginPatterns []string
	// Presets offered to stream sessions; nil means the built-in regions.
	Presets []viewer.Preset
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:3400"
	}
	if c.DefaultWidth <= 0 {
		c.DefaultWidth = model.DefaultFrameWidth
	}
	if c.DefaultHeight <= 0 {
		c.DefaultHeight = model.DefaultFrameHeight
	}
	if c.MaxFramePixels <= 0 {
		c.MaxFramePixels = 4096 * 4096
	}
	return c
}

// frameFits reports whether a w×h frame is non-empty and within
// MaxFramePixels. Each side is bounded before the area so the product never
// overflows.
func (c Config) frameFits(w, h int) bool {
	return w >= 1 && h >= 1 && w <= c.MaxFramePixels && h <= c.MaxFramePixels/w
}

// Server provides the HTTP API.
type Server struct {
	cfg       Config
	store     Store
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	gen       atomic.Uint64
	streams   atomic.Int64
}

// NewServer creates a new HTTP API server.
func NewServer(cfg Config, store Store) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg.withDefaults(),
		store:     store,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/view", s.handleView)
	r.GET("/api/frame.png", s.handleFrame)
	r.GET("/api/sample", s.handleSample)
	r.GET("/api/renders", s.handleRenders)
	r.GET("/api/presets", s.handlePresets)
	r.GET("/api/stream", s.handleStream)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server. Open streams are cancelled.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	renders, err := s.store.RenderCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"uptime":       time.Since(s.startTime).String(),
		"render_count": renders,
		"streams":      s.streams.Load(),
	})
}
