package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
)

const maxHeaderBytes = 64 << 10

// Server is the HTTP listener for the insight API. Its WriteTimeout pairs with
// cfg.HTTPConfig.RequestBudget, which the handlers use to stop work early enough
// to still write an envelope.
type Server struct {
	httpServer *http.Server
	lis        net.Listener
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
	}
}

// Listen binds the port, so bind errors surface before Run is started in a goroutine.
func (s *Server) Listen() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.lis = lis
	return nil
}

// Addr is the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Run serves until Stop. A stop is not an error.
func (s *Server) Run() error {
	if s.lis == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	if err := s.httpServer.Serve(s.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop lets in-flight requests finish until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.httpServer.SetKeepAlivesEnabled(false)
	return s.httpServer.Shutdown(ctx)
}
