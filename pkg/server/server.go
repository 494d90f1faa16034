package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"bqdigital/housekeeper/pkg/config"
	"bqdigital/housekeeper/pkg/crawler"
	"bqdigital/housekeeper/pkg/telemetry/health"
	"bqdigital/housekeeper/pkg/telemetry/tracing"
)

// Deps are the collaborators the admin server serves from.
type Deps struct {
	Runner   TaskRunner
	Health   *health.Checker
	Metrics  http.Handler // nil disables the metrics endpoint
	Tracer   *tracing.Tracer
	Crawlers crawler.Checker

	HealthConfig config.HealthConfig
	MetricsPath  string

	Version   string
	Commit    string
	BuildTime string
}

// Server is the admin HTTP server.
type Server struct {
	config   *config.ServerConfig
	deps     Deps
	runner   TaskRunner
	crawlers crawler.Checker
	logger   *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates an admin server.
func NewServer(cfg *config.ServerConfig, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Tracer == nil {
		deps.Tracer = tracing.Noop()
	}
	return &Server{
		config:   cfg,
		deps:     deps,
		runner:   deps.Runner,
		crawlers: deps.Crawlers,
		logger:   logger.With("component", "server"),
	}
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops accepting requests and waits for in-flight ones up to
// the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("admin server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	hc := s.deps.HealthConfig
	if s.deps.Health != nil {
		mux.Handle("GET "+pathOr(hc.LivenessPath, config.DefaultLivenessPath), s.deps.Health.LivenessHandler())
		mux.Handle("GET "+pathOr(hc.ReadinessPath, config.DefaultReadinessPath), s.deps.Health.ReadinessHandler())
	}
	mux.Handle("GET /version", health.VersionHandler(s.deps.Version, s.deps.Commit, s.deps.BuildTime))
	if s.deps.Metrics != nil {
		mux.Handle("GET "+pathOr(s.deps.MetricsPath, config.DefaultMetricsPath), s.deps.Metrics)
	}
	if s.runner != nil {
		mux.HandleFunc("GET /tasks", s.handleListTasks)
		mux.HandleFunc("POST /tasks/{name}/run", s.handleRunTask)
	}

	var handler http.Handler = mux
	handler = requestContextMiddleware(handler)
	handler = s.deps.Tracer.HTTPMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}

func pathOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
