package config

import "time"

// Config is the root configuration of housekeeper.
type Config struct {
	// Database selects and configures the history store.
	Database DatabaseConfig `yaml:"database"`

	// History configures how many versions the trim task keeps.
	History HistoryConfig `yaml:"history"`

	// Tasks are the scheduled maintenance tasks.
	Tasks []TaskConfig `yaml:"tasks"`

	// Crawler configures crawler classification.
	Crawler CrawlerConfig `yaml:"crawler"`

	// Server configures the admin HTTP server.
	Server ServerConfig `yaml:"server"`

	// Telemetry configures logging, metrics, tracing and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DatabaseConfig configures the history store.
type DatabaseConfig struct {
	// Backend is the store implementation.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo), "pgx" (PostgreSQL), "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// DSN is the file path for SQLite or the connection string for PostgreSQL.
	// Default: "data/housekeeper.db"
	DSN string `yaml:"dsn"`

	// MaxOpenConns is the maximum number of open connections.
	// SQLite backends always use a single connection.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables SQLite write-ahead logging.
	// Default: false
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// HistoryConfig configures version history length.
type HistoryConfig struct {
	// KeepVersions is the number of newest versions kept per page or object.
	// Default: 50
	KeepVersions int `yaml:"keep_versions"`

	// SiteKeepVersions overrides KeepVersions per site name.
	SiteKeepVersions map[string]int `yaml:"site_keep_versions"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	// Name identifies the task in logs, metrics and the admin API.
	Name string `yaml:"name"`

	// Type selects the implementation.
	// Options: "ClearOldDataFromRecycleBin", "TrimObjectAndPageVersionHistory"
	Type string `yaml:"type"`

	// Schedule is a standard five-field cron expression or a descriptor
	// such as "@daily". An empty schedule registers the task for manual
	// runs only.
	Schedule string `yaml:"schedule"`

	// Data is the raw task data handed to the task on each run.
	Data string `yaml:"data"`

	// Enabled controls whether the task is scheduled.
	// Default: true
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether the task should be scheduled.
func (t TaskConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// CrawlerConfig configures crawler classification.
type CrawlerConfig struct {
	// BaselinePatterns are RE2 patterns matched against the user agent
	// before the keyword list is consulted.
	// Default: a small built-in list of common crawlers and HTTP clients
	BaselinePatterns []string `yaml:"baseline_patterns"`
}

// ServerConfig configures the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the address the admin server binds to.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response. Manual
	// task runs are synchronous, so this bounds how long a run may take
	// when triggered over HTTP.
	// Default: 10m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the grace period for in-flight requests.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the Prometheus endpoint on the admin server.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "housekeeper"
	Namespace string `yaml:"namespace"`

	// DurationBuckets defines histogram buckets for task run duration (seconds).
	// Default: [0.1, 0.5, 1, 5, 15, 60, 300, 900]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "housekeeper"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
