// Package api provides the HTTP REST surface of the tutoring service.
//
// Endpoints:
//
//	POST /api/v1/teach     → JSON lesson for a subject
//	POST /api/v1/quiz      → JSON quiz for a subject
//	POST /api/v1/whatsapp  → TwiML envelope for a messaging webhook
//	GET  /healthz          → liveness probe
//	GET  /readyz           → readiness probe (pings the database)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery, request logging, CORS
//   - health.go: probes
//   - tutor.go: teach and quiz endpoints
//   - whatsapp.go: messaging webhook
//   - response.go: JSON response helpers
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sabitutor/sabi/internal/prompt"
	"github.com/sabitutor/sabi/internal/tutor"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds request header reads (Slowloris protection).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response. Sized
	// to cover a full generation call.
	WriteTimeout = 90 * time.Second

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Answerer is the tutoring surface the HTTP layer consumes.
// tutor.Tutor satisfies it.
type Answerer interface {
	Answer(ctx context.Context, subject string, profile prompt.Profile) tutor.Reply
	Quiz(ctx context.Context, subject string) string
}

// Config carries the server's collaborators and settings.
type Config struct {
	Tutor  Answerer
	Pool   *pgxpool.Pool // readiness checks; nil disables the ping
	Logger *slog.Logger

	// ModelName is reported back to clients in teach responses.
	ModelName string

	// CORSOrigins lists allowed origins. Empty means "*".
	CORSOrigins []string
}

// Server is the HTTP server with all routes registered.
type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	corsOrigins []string

	health   *HealthHandler
	tutoring *TutorHandler
	whatsapp *WhatsAppHandler
}

// NewServer creates a Server and registers all routes.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	s := &Server{
		mux:         mux,
		logger:      logger,
		corsOrigins: cfg.CORSOrigins,
		health:      NewHealthHandler(cfg.Pool, logger),
		tutoring:    NewTutorHandler(cfg.Tutor, cfg.ModelName, logger),
		whatsapp:    NewWhatsAppHandler(cfg.Tutor, logger),
	}

	s.health.RegisterRoutes(mux)
	s.tutoring.RegisterRoutes(mux)
	s.whatsapp.RegisterRoutes(mux)

	return s
}

// Handler returns the mux wrapped in middleware.
// Order: recovery → logging → CORS → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		corsMiddleware(s.corsOrigins),
	)
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
