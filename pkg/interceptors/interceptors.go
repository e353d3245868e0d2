package interceptors

import (
	"google.golang.org/grpc"

	"h3routeserv/pkg/telemetry"
)

// ServerConfig конфигурация серверных интерсепторов
type ServerConfig struct {
	ServiceName   string
	EnableTracing bool
}

// UnaryServerInterceptors возвращает цепочку unary интерсепторов
func UnaryServerInterceptors(cfg *ServerConfig) grpc.UnaryServerInterceptor {
	interceptors := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
	}

	// Tracing
	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.UnaryServerInterceptor())
	}

	// Metrics
	interceptors = append(interceptors, MetricsInterceptor(cfg.ServiceName))

	// Logging
	interceptors = append(interceptors, LoggingInterceptor())

	// Validation
	interceptors = append(interceptors, ValidationInterceptor())

	return chainUnaryInterceptors(interceptors...)
}

// StreamServerInterceptors возвращает цепочку stream интерсепторов
func StreamServerInterceptors(cfg *ServerConfig) grpc.StreamServerInterceptor {
	interceptors := []grpc.StreamServerInterceptor{
		StreamRecoveryInterceptor(),
	}

	// Tracing
	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.StreamServerInterceptor())
	}

	// Metrics & Logging
	interceptors = append(interceptors,
		StreamMetricsInterceptor(cfg.ServiceName),
		StreamLoggingInterceptor(),
	)

	return chainStreamInterceptors(interceptors...)
}

// Legacy functions for backward compatibility

func UnaryServerInterceptorsLegacy(serviceName string, enableTracing bool) grpc.UnaryServerInterceptor {
	return UnaryServerInterceptors(&ServerConfig{
		ServiceName:   serviceName,
		EnableTracing: enableTracing,
	})
}

func StreamServerInterceptorsLegacy(serviceName string, enableTracing bool) grpc.StreamServerInterceptor {
	return StreamServerInterceptors(&ServerConfig{
		ServiceName:   serviceName,
		EnableTracing: enableTracing,
	})
}
