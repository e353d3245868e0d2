package server

import (
	"testing"

	"h3routeserv/pkg/config"
	"h3routeserv/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func init() {
	logger.Init("error")
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{
		App:    config.AppConfig{Name: "test-app"},
		BindTo: "127.0.0.1:50051",
		GRPC: config.GRPCConfig{
			KeepAlive: config.KeepAliveConfig{},
		},
	}

	srv := New(cfg)
	assert.NotNil(t, srv)
	assert.NotNil(t, srv.GetEngine())
}

func TestNewServer_Reflection(t *testing.T) {
	cfg := &config.Config{
		App:    config.AppConfig{Name: "test-app", Environment: "development"},
		BindTo: "127.0.0.1:50052",
	}

	srv := New(cfg)
	assert.NotNil(t, srv)
}
