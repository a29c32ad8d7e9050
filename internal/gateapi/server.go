// Package gateapi serves the administrative registry endpoints and the
// access-gate verification endpoint over HTTP.
package gateapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsescalp/channel-gate/internal/registry"
	"github.com/pulsescalp/channel-gate/internal/verifier"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-Id"

	contentTypeJSON = "application/json; charset=utf-8"
)

type Server struct {
	registry *registry.Registry
	verifier *verifier.Verifier
	port     int
	logger   *zerolog.Logger
}

func NewServer(reg *registry.Registry, ver *verifier.Verifier, port int, logger *zerolog.Logger) *Server {
	return &Server{
		registry: reg,
		verifier: ver,
		port:     port,
		logger:   logger,
	}
}

// Handler builds the route table. Exposed separately from Start so tests
// can drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/channels", s.handleList)
	mux.HandleFunc("POST /api/channels", s.handleUpsert)
	mux.HandleFunc("DELETE /api/channels/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/verify/{userID}", s.handleVerify)

	return s.withRequestID(s.withLogging(mux))
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("Gate API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
