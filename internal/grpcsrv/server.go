// Package grpcsrv exposes the standard gRPC health service so orchestrators
// can probe the web server and the availability of the Revelare API.
package grpcsrv

import (
	"context"
	"net"
	"time"

	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// UpstreamService is the health service name tracking the Revelare API.
const UpstreamService = "revelare.Upstream"

type Upstream interface {
	Configured() bool
	BreakerState() upstream.CircuitState
}

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	upstream Upstream
	log      *logger.Logger
}

func NewServer(up Upstream, log *logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}
	s := &Server{
		health:   health.NewServer(),
		upstream: up,
		log:      log.WithContext("component", "grpc"),
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.Sync()
	return s
}

func (s *Server) logUnary(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.log.Debug("grpc_request", "method", info.FullMethod, "code", status.Code(err).String(), "duration_ms", time.Since(start).Milliseconds())
	return resp, err
}

// Sync publishes the current upstream state. The overall service stays
// SERVING; only the upstream entry follows the breaker.
func (s *Server) Sync() {
	st := healthpb.HealthCheckResponse_SERVING
	if !s.upstream.Configured() || s.upstream.BreakerState() == upstream.StateOpen {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(UpstreamService, st)
}

// Watch re-syncs every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync()
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc_server_listening", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
