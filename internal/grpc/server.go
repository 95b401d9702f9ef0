// internal/grpc/server.go
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the name reported by the health service for the recommendation API.
const ServiceName = "recommendation.v1.Recommendations"

// Pinger is the dependency whose reachability decides the serving status.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes grpc.health.v1 for the recommendation service. The status
// follows the catalog: SERVING while it answers pings, NOT_SERVING otherwise.
type Server struct {
	health  *health.Server
	catalog Pinger
	logger  *slog.Logger
}

func NewServer(catalog Pinger, logger *slog.Logger) *Server {
	return &Server{
		health:  health.NewServer(),
		catalog: catalog,
		logger:  logger,
	}
}

// NewGRPCServer builds a *grpc.Server with the health and reflection services registered.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.logUnary))
	srv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)
	return srv
}

// CheckCatalog pings the catalog once and publishes the result.
func (s *Server) CheckCatalog(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.catalog.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Catalog ping failed, reporting NOT_SERVING", slog.String("error", err.Error()))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

// Watch checks the catalog every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		s.CheckCatalog(checkCtx)
		cancel()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown flips every service to NOT_SERVING; later status updates are ignored.
func (s *Server) Shutdown() {
	s.logger.Info("gRPC health status set to NOT_SERVING")
	s.health.Shutdown()
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.DebugContext(ctx, "gRPC call handled",
		slog.String("method", info.FullMethod),
		slog.String("code", status.Code(err).String()),
		slog.Duration("duration", time.Since(start)))
	return resp, err
}
