package rpc

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/linkstash/linkstash-back/internal/config"
)

// freePort asks the kernel for an unused TCP port so parallel CI runs
// cannot collide on a fixed one.
func freePort(t *testing.T) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	return strconv.Itoa(lis.Addr().(*net.TCPAddr).Port)
}

func TestHealthProbe(t *testing.T) {
	port := freePort(t)

	app := fx.New(
		Module,
		fx.Provide(
			func() *config.Config {
				return &config.Config{GRPCPort: port}
			},
			func() (*zap.SugaredLogger, error) {
				l, err := zap.NewDevelopment()
				if err != nil {
					return nil, err
				}
				return l.Sugar(), nil
			},
		),
		fx.Invoke(func(*grpc.Server) {}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()

	require.NoError(t, app.Start(ctx))
	defer func() {
		require.NoError(t, app.Stop(ctx))
	}()

	conn, err := grpc.Dial("localhost:"+port, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
