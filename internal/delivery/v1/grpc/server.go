package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/rautpranav13/IBMaarogyam/internal/cfg"
	"github.com/rautpranav13/IBMaarogyam/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// InsightServiceName is the health service name reported next to the overall "" entry.
const InsightServiceName = "aarogyam.v1.InsightService"

// GRPCServer serves the standard gRPC health protocol so orchestrators can probe
// the process without going through HTTP.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
	lis    net.Listener
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger) *GRPCServer {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &GRPCServer{
		server: srv,
		health: hs,
		cfg:    cfg,
		logger: logger,
	}
}

// Listen binds the port and reports every service SERVING.
// Split from Start so callers learn about bind errors synchronously.
func (s *GRPCServer) Listen() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.lis = lis

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(InsightServiceName, healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Addr is the bound address, nil before Listen.
func (s *GRPCServer) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

func (s *GRPCServer) Start() error {
	if s.lis == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	return s.server.Serve(s.lis)
}

// Stop marks every service NOT_SERVING, then drains in-flight RPCs until ctx expires.
func (s *GRPCServer) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}
