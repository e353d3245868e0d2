// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure.
type Config struct {
	App          AppConfig                    `koanf:"app"`
	BindTo       string                       `koanf:"bind_to"`
	GRPC         GRPCConfig                   `koanf:"grpc"`
	Log          LogConfig                    `koanf:"log"`
	Metrics      MetricsConfig                `koanf:"metrics"`
	Tracing      TracingConfig                `koanf:"tracing"`
	ObjectStore  ObjectStoreConfig            `koanf:"objectstore"`
	Graphs       GraphsConfig                 `koanf:"graphs"`
	Outputs      OutputsConfig                `koanf:"outputs"`
	Datasets     map[string]DatasetConfig     `koanf:"datasets"`
	RoutingModes map[string]RoutingModeConfig `koanf:"routing_modes"`
	DatasetCache DatasetCacheConfig           `koanf:"dataset_cache"`
}

// DatasetCacheConfig configures an optional second-tier cache sitting in
// front of the object store for raw dataset partition bytes, shared across
// replicas when the driver is redis so a partition fetched by one instance
// warms its peers.
type DatasetCacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // memory, redis
	RedisAddr  string        `koanf:"redis_addr"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// AppConfig holds process-wide identity settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// GRPCConfig configures the gRPC server transport.
type GRPCConfig struct {
	MaxRecvMsgSize    int             `koanf:"max_recv_msg_size"` // bytes
	MaxSendMsgSize    int             `koanf:"max_send_msg_size"` // bytes
	MaxConcurrentConn int             `koanf:"max_concurrent_conn"`
	KeepAlive         KeepAliveConfig `koanf:"keepalive"`
	TLS               TLSConfig       `koanf:"tls"`
	Compression       string          `koanf:"compression"` // "", "gzip"
}

// KeepAliveConfig configures gRPC keepalive enforcement.
type KeepAliveConfig struct {
	MaxConnectionIdle     time.Duration `koanf:"max_connection_idle"`
	MaxConnectionAge      time.Duration `koanf:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `koanf:"max_connection_age_grace"`
	Time                  time.Duration `koanf:"time"`
	Timeout               time.Duration `koanf:"timeout"`
}

// TLSConfig configures transport security for the gRPC listener.
type TLSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
	CAFile   string `koanf:"ca_file"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig configures the OpenTelemetry OTLP exporter.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// ObjectStoreConfig selects and configures the backing blob store used for
// dataset input, persisted graphs, and persisted route/batch results.
type ObjectStoreConfig struct {
	Type            string `koanf:"type"` // fs, s3
	Root            string `koanf:"root"` // fs backend
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	ForcePathStyle  bool   `koanf:"force_path_style"`
	MaxRetries      int    `koanf:"max_retries"`
}

// GraphsConfig configures where built graphs are stored and how much of
// the bounded LRU graph cache may be resident at once.
type GraphsConfig struct {
	Prefix    string `koanf:"prefix"`     // object store key prefix for graph snapshots
	CacheSize int64  `koanf:"cache_size"` // bytes: sum of resident graph sizes, not entry count
}

// OutputsConfig configures where persisted route/batch results are written.
type OutputsConfig struct {
	KeyPrefix string        `koanf:"key_prefix"`
	TTL       time.Duration `koanf:"ttl"`
}

// DatasetConfig describes one named routable dataset: where its source
// rows live, which resolutions it was built at, and which column carries
// the H3 cell index.
type DatasetConfig struct {
	Bucket            string `koanf:"bucket"`
	KeyPattern        string `koanf:"key_pattern"`
	Resolutions       []int  `koanf:"resolutions"` // [fileResolution, dataResolution]
	H3IndexColumnName string `koanf:"h3index_column_name"`
}

// FileResolution returns the H3 resolution datasets are partitioned at on
// the object store, or 0 if unset.
func (d DatasetConfig) FileResolution() int {
	if len(d.Resolutions) > 0 {
		return d.Resolutions[0]
	}
	return 0
}

// DataResolution returns the H3 resolution cell indices within a dataset
// are recorded at, or 0 if unset.
func (d DatasetConfig) DataResolution() int {
	if len(d.Resolutions) > 1 {
		return d.Resolutions[1]
	}
	return d.FileResolution()
}

// RoutingModeConfig names a weighting profile edges are scored under.
type RoutingModeConfig struct {
	EdgePreferenceFactor float64 `koanf:"edge_preference_factor"`
}

// Validate checks the configuration for internally-consistent values.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.BindTo == "" {
		errs = append(errs, "bind_to is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validStoreTypes := map[string]bool{"fs": true, "s3": true}
	if c.ObjectStore.Type != "" && !validStoreTypes[c.ObjectStore.Type] {
		errs = append(errs, fmt.Sprintf("objectstore.type must be one of: fs, s3, got %s", c.ObjectStore.Type))
	}
	if c.ObjectStore.Type == "s3" && c.ObjectStore.Bucket == "" {
		errs = append(errs, "objectstore.bucket is required when objectstore.type is s3")
	}
	if c.ObjectStore.Type == "fs" && c.ObjectStore.Root == "" {
		errs = append(errs, "objectstore.root is required when objectstore.type is fs")
	}

	if c.Graphs.CacheSize < 0 {
		errs = append(errs, "graphs.cache_size must be non-negative")
	}

	for name, ds := range c.Datasets {
		if ds.FileResolution() > ds.DataResolution() {
			errs = append(errs, fmt.Sprintf("datasets.%s: resolutions must be [fileResolution, dataResolution] with fileResolution <= dataResolution", name))
		}
		if ds.H3IndexColumnName == "" {
			errs = append(errs, fmt.Sprintf("datasets.%s.h3index_column_name is required", name))
		}
	}

	for name, mode := range c.RoutingModes {
		if mode.EdgePreferenceFactor < 0 {
			errs = append(errs, fmt.Sprintf("routing_modes.%s.edge_preference_factor must be non-negative", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether the configured environment is development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the configured environment is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
