// pkg/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "H3ROUTE_"
	configEnvVar = "CONFIG_PATH"
)

// Loader assembles a Config from defaults, an optional file, and the
// environment, in that order of increasing precedence.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader builds a Loader with the default search paths and env prefix.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/h3routeserv/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConfigPaths overrides the config file search paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load resolves the configuration with precedence:
// 1. Defaults (lowest)
// 2. Config file (yaml)
// 3. Environment variables (highest)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		// A config file is optional; fall through to env + defaults.
		fmt.Printf("warning: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "h3routeserv",
		"app.version":     "0.1.0",
		"app.environment": "development",
		"app.debug":       false,

		"bind_to": "0.0.0.0:50051",

		// GRPC
		"grpc.max_recv_msg_size":                  32 * 1024 * 1024, // 32MB, batch responses run large
		"grpc.max_send_msg_size":                  32 * 1024 * 1024,
		"grpc.max_concurrent_conn":                1000,
		"grpc.compression":                        "gzip",
		"grpc.keepalive.max_connection_idle":      15 * time.Minute,
		"grpc.keepalive.max_connection_age":       30 * time.Minute,
		"grpc.keepalive.max_connection_age_grace": 5 * time.Minute,
		"grpc.keepalive.time":                     5 * time.Minute,
		"grpc.keepalive.timeout":                  20 * time.Second,
		"grpc.tls.enabled":                        false,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "h3routeserv",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "h3routeserv",
		"tracing.sample_rate":  0.1,

		// Object store
		"objectstore.type":             "fs",
		"objectstore.root":             "./data",
		"objectstore.force_path_style": true,
		"objectstore.max_retries":      3,

		// Graphs
		"graphs.prefix":     "graphs/",
		"graphs.cache_size": int64(512 * 1024 * 1024), // 512MB of resident graph artifacts

		// Outputs
		"outputs.key_prefix": "results/",
		"outputs.ttl":        24 * time.Hour,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

func (l *Loader) loadEnv() error {
	known := l.k.Keys()
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		// H3ROUTE_GRPC_MAX_RECV_MSG_SIZE -> grpc.max_recv_msg_size
		name := strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		for _, k := range known {
			if strings.ReplaceAll(k, ".", "_") == name {
				return k
			}
		}
		return strings.ReplaceAll(name, "_", ".")
	}), nil)
}

// MustLoad loads the configuration or panics.
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load loads the configuration with default search paths and env prefix.
func Load() (*Config, error) {
	return NewLoader().Load()
}
