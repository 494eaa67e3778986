// Package server owns the HTTP server lifecycle: construction with hardened
// timeouts, startup, and graceful shutdown of the listener plus any attached
// resources.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server and the resources whose lifetime it owns.
type Server struct {
	config  Config
	http    *http.Server
	closers []io.Closer
	log     *slog.Logger
}

// NewServer creates an HTTP server for the given handler. Closers are closed
// in order during Shutdown, after the listener has drained; pass the database
// handle and any bridge connections here so they outlive in-flight requests.
func NewServer(handler http.Handler, config Config, log *slog.Logger, closers ...io.Closer) *Server {
	if log == nil {
		log = slog.Default()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:  config,
		http:    httpServer,
		closers: closers,
		log:     log,
	}
}

// Start starts the HTTP server and blocks until the listener stops. ctx
// becomes the base context of every accepted connection, so handlers observe
// its cancellation. http.ErrServerClosed is returned after a graceful
// Shutdown and is not an operational failure.
func (s *Server) Start(ctx context.Context) error {
	s.http.BaseContext = func(net.Listener) context.Context { return ctx }
	s.log.Info("starting http server", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains the listener, then closes attached resources in order.
// The first error wins but every closer still runs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down server")

	var firstErr error
	if err := s.http.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("server shutdown error: %w", err)
	}

	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("resource close error: %w", err)
		}
	}

	if firstErr == nil {
		s.log.Info("server shutdown complete")
	}
	return firstErr
}
