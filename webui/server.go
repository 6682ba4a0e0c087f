// Package webui exposes the generation service over HTTP: a JSON API for
// submitting generation requests and browsing run history.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dax8it/z-image-mps/history"
	"github.com/dax8it/z-image-mps/imagegen"
)

// ServerConfig configures the Server.
type ServerConfig struct {
	// Host to bind to (default: "0.0.0.0")
	Host string

	// Port to listen on (default: 7860)
	Port int

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Generation runs inside the handler,
	// so this must cover a full inference (default: 10m)
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// LoRADir is the adapter directory listed by /api/loras
	LoRADir string

	// ThumbnailSize is the max edge of stored thumbnails
	ThumbnailSize int

	// Version reported by /health
	Version string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            7860,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		ThumbnailSize:   256,
		Version:         "dev",
	}
}

// Server wires the generation processor and run history behind a
// gorilla/mux router with request logging.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     ServerConfig
	logger     *zap.Logger
	processor  *imagegen.Processor
	runs       *history.Repository
}

// NewServer creates a Server. The runs repository is optional; when nil
// the history endpoints respond 404 and completed runs are not recorded.
func NewServer(config ServerConfig, processor *imagegen.Processor, runs *history.Repository, logger *zap.Logger) (*Server, error) {
	if processor == nil {
		return nil, fmt.Errorf("webui: processor is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:    mux.NewRouter(),
		config:    config,
		logger:    logger,
		processor: processor,
		runs:      runs,
	}
	s.registerRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      NewLoggingMiddleware(logger, "/health")(s.router),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("web server created",
		zap.String("addr", addr),
		zap.Bool("history_enabled", runs != nil),
	)
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/generate", s.handleGenerate).Methods("POST")
	s.router.HandleFunc("/api/presets", s.handlePresets).Methods("GET")
	s.router.HandleFunc("/api/loras", s.handleLoRAs).Methods("GET")

	if s.runs != nil {
		s.router.HandleFunc("/api/runs", s.handleListRuns).Methods("GET")
		s.router.HandleFunc("/api/runs/{id}", s.handleGetRun).Methods("GET")
		s.router.HandleFunc("/api/runs/{id}", s.handleDeleteRun).Methods("DELETE")
		s.router.HandleFunc("/api/runs/{id}/image", s.handleRunImage).Methods("GET")
		s.router.HandleFunc("/api/runs/{id}/thumbnail", s.handleRunThumbnail).Methods("GET")
	}
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called; http.ErrServerClosed is translated to nil.
func (s *Server) Start() error {
	s.logger.Info("web server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webui: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("web server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webui: shutdown: %w", err)
	}
	return nil
}
