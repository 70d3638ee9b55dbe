package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
)

// HealthRegistrar exposes grpc.health.v1.Health backed by srv.
type HealthRegistrar struct {
	srv *health.Server
}

func NewHealthRegistrar(srv *health.Server) *HealthRegistrar {
	return &HealthRegistrar{srv: srv}
}

func (h *HealthRegistrar) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

// NewGRPCServer builds a gRPC server with request logging and mounts every registrar.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log)))

	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// grpcurl support
	reflection.Register(grpcServer)

	return grpcServer
}

// ServeGRPC listens on the configured address and blocks until the server stops.
func ServeGRPC(cfg *config.Config, s *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
