package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"

	"bqdigital/housekeeper/pkg/crawler"
	"bqdigital/housekeeper/pkg/sweep"
	"bqdigital/housekeeper/pkg/tasks"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "tasks[0].schedule").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

var (
	validBackends   = []string{"sqlite", "sqlite3", "pgx", "memory"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text", "console"}
	validSamplers   = []string{"always", "never", "ratio"}
)

// Validate validates the entire configuration. All field errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateTasks(cfg.Tasks)...)
	errs = append(errs, validateCrawler(&cfg.Crawler)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateDatabase(cfg *DatabaseConfig) []FieldError {
	var errs []FieldError

	if !slices.Contains(validBackends, cfg.Backend) {
		errs = append(errs, FieldError{
			Field:   "database.backend",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validBackends, ", ")),
		})
	}
	if cfg.Backend != "memory" && cfg.DSN == "" {
		errs = append(errs, FieldError{Field: "database.dsn", Message: "is required"})
	}
	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{Field: "database.max_open_conns", Message: "must be 0 or greater"})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{Field: "database.max_idle_conns", Message: "must be 0 or greater"})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "database.busy_timeout", Message: "must not be negative"})
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if cfg.KeepVersions < 1 {
		errs = append(errs, FieldError{Field: "history.keep_versions", Message: "must be at least 1"})
	}
	for site, n := range cfg.SiteKeepVersions {
		if n < 1 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("history.site_keep_versions.%s", site),
				Message: "must be at least 1",
			})
		}
	}

	return errs
}

func validateTasks(list []TaskConfig) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool, len(list))

	for i, t := range list {
		prefix := fmt.Sprintf("tasks[%d]", i)

		if t.Name == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "is required"})
		} else if seen[t.Name] {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: fmt.Sprintf("duplicate task name %q", t.Name)})
		}
		seen[t.Name] = true

		if !slices.Contains(tasks.Types(), t.Type) {
			errs = append(errs, FieldError{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("must be one of %s", strings.Join(tasks.Types(), ", ")),
			})
		}

		if t.Schedule != "" {
			if _, err := cron.ParseStandard(t.Schedule); err != nil {
				errs = append(errs, FieldError{Field: prefix + ".schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
			}
		}

		// Recycle-bin task data must parse.
		if t.Type == tasks.TypeClearRecycleBin && t.IsEnabled() {
			if _, err := sweep.ParseOptions(t.Data); err != nil {
				errs = append(errs, FieldError{Field: prefix + ".data", Message: err.Error()})
			}
		}
	}

	return errs
}

func validateCrawler(cfg *CrawlerConfig) []FieldError {
	if _, err := crawler.NewPatternChecker(cfg.BaselinePatterns, nil); err != nil {
		return []FieldError{{Field: "crawler.baseline_patterns", Message: err.Error()}}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "is required"})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must not be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must not be negative"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must not be negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Logging.Level)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")),
		})
	}
	if !slices.Contains(validLogFormats, strings.ToLower(cfg.Logging.Format)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "must start with /"})
	}
	if !slices.IsSorted(cfg.Metrics.DurationBuckets) {
		errs = append(errs, FieldError{Field: "telemetry.metrics.duration_buckets", Message: "must be in increasing order"})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "is required when tracing is enabled"})
		}
		if !slices.Contains(validSamplers, cfg.Tracing.Sampler) {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("must be one of %s", strings.Join(validSamplers, ", ")),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0.0 and 1.0"})
		}
	}

	if !strings.HasPrefix(cfg.Health.LivenessPath, "/") {
		errs = append(errs, FieldError{Field: "telemetry.health.liveness_path", Message: "must start with /"})
	}
	if !strings.HasPrefix(cfg.Health.ReadinessPath, "/") {
		errs = append(errs, FieldError{Field: "telemetry.health.readiness_path", Message: "must start with /"})
	}

	return errs
}
