package rpc

import (
	"context"
	"net"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/linkstash/linkstash-back/internal/config"
)

// NewGRPCServer exposes the standard grpc health service so orchestration
// probes can check the process without touching the HTTP surface.
func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.SugaredLogger) *grpc.Server {
	grpcServer := grpc.NewServer()

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
			if err != nil {
				return err
			}
			healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("grpc server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			healthServer.Shutdown()
			grpcServer.GracefulStop()
			return nil
		},
	})

	return grpcServer
}
