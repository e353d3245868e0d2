//go:build integration

package pkg_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	"h3routeserv/pkg/config"
	"h3routeserv/pkg/server"
	"h3routeserv/tests/integration/testutil"
)

func testServerConfig(name string, port int) *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        name,
			Version:     "1.0.0",
			Environment: "test",
		},
		BindTo: fmt.Sprintf("127.0.0.1:%d", port),
		GRPC: config.GRPCConfig{
			MaxRecvMsgSize: 4 * 1024 * 1024,
			MaxSendMsgSize: 4 * 1024 * 1024,
			KeepAlive: config.KeepAliveConfig{
				MaxConnectionIdle: 5 * time.Minute,
				Time:              1 * time.Minute,
				Timeout:           20 * time.Second,
			},
		},
		Metrics: config.MetricsConfig{Enabled: false},
		Tracing: config.TracingConfig{Enabled: false},
	}
}

func TestGRPCServer_StartStop(t *testing.T) {
	testutil.SkipIfNotIntegration(t)

	port := testutil.FreePort(t)
	cfg := testServerConfig("test-server", port)

	srv := server.New(cfg)

	go func() {
		_ = srv.Run()
	}()

	time.Sleep(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(
		fmt.Sprintf("localhost:%d", port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer conn.Close()

	healthClient := grpc_health_v1.NewHealthClient(conn)
	resp, err := healthClient.Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: "test-server",
	})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", resp.Status)
	}

	srv.GracefulStop()
}

func TestGRPCServer_HealthCheck(t *testing.T) {
	testutil.SkipIfNotIntegration(t)

	port := testutil.FreePort(t)
	cfg := testServerConfig("health-test", port)

	srv := server.New(cfg)

	go func() {
		_ = srv.Run()
	}()
	defer srv.GracefulStop()

	time.Sleep(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(
		fmt.Sprintf("localhost:%d", port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer conn.Close()

	healthClient := grpc_health_v1.NewHealthClient(conn)

	stream, err := healthClient.Watch(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: "health-test",
	})
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	resp, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv failed: %v", err)
	}
	if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("initial status = %v, want SERVING", resp.Status)
	}
}
