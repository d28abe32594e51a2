// Package server envuelve el http.Server con arranque y shutdown graceful.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/filmlot/sessiond/internal/observability/logger"
)

// Config configura el servidor HTTP.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server es el servidor HTTP de sessiond.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

// New crea el servidor con el handler dado.
func New(cfg Config, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Run arranca el servidor y bloquea hasta que ctx se cancele o el listener
// falle. Al cancelar, intenta un shutdown graceful con timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", logger.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	logger.L().Info("shutting down http server")
	return s.srv.Shutdown(shutdownCtx)
}
