package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer exposes the standard health service for orchestrator probes.
type GRPCServer struct {
	addr   string
	server *grpc.Server
	health *health.Server
	log    *zap.Logger
}

func NewGRPCServer(addr string, log *zap.Logger) *GRPCServer {
	if log == nil {
		log = zap.NewNop()
	}
	grpcServer := grpc.NewServer()
	// Health service
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	return &GRPCServer{addr: addr, server: grpcServer, health: hs, log: log}
}

// Serve listens on the configured address and blocks.
func (g *GRPCServer) Serve() error {
	lis, err := net.Listen("tcp", g.addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", g.addr, err)
	}
	return g.ServeListener(lis)
}

func (g *GRPCServer) ServeListener(lis net.Listener) error {
	g.log.Info("gRPC health serving", zap.String("address", lis.Addr().String()))
	if err := g.server.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop flips health to NOT_SERVING and drains, falling back to a hard stop when ctx ends.
func (g *GRPCServer) Stop(ctx context.Context) {
	g.health.Shutdown()
	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		g.server.Stop()
	}
}
