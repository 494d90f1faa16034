package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "unknown backend",
			modify:    func(c *Config) { c.Database.Backend = "oracle" },
			wantField: "database.backend",
		},
		{
			name:      "missing dsn",
			modify:    func(c *Config) { c.Database.DSN = "" },
			wantField: "database.dsn",
		},
		{
			name:      "site keep versions below one",
			modify:    func(c *Config) { c.History.SiteKeepVersions = map[string]int{"main": 0} },
			wantField: "history.site_keep_versions.main",
		},
		{
			name: "task without name",
			modify: func(c *Config) {
				c.Tasks = []TaskConfig{{Type: "TrimObjectAndPageVersionHistory"}}
			},
			wantField: "tasks[0].name",
		},
		{
			name: "duplicate task name",
			modify: func(c *Config) {
				c.Tasks = []TaskConfig{
					{Name: "trim", Type: "TrimObjectAndPageVersionHistory"},
					{Name: "trim", Type: "TrimObjectAndPageVersionHistory"},
				}
			},
			wantField: "tasks[1].name",
		},
		{
			name: "unknown task type",
			modify: func(c *Config) {
				c.Tasks = []TaskConfig{{Name: "x", Type: "Reindex"}}
			},
			wantField: "tasks[0].type",
		},
		{
			name: "invalid schedule",
			modify: func(c *Config) {
				c.Tasks = []TaskConfig{{Name: "trim", Type: "TrimObjectAndPageVersionHistory", Schedule: "every day"}}
			},
			wantField: "tasks[0].schedule",
		},
		{
			name: "invalid recycle bin data",
			modify: func(c *Config) {
				c.Tasks = []TaskConfig{{Name: "clear", Type: "ClearOldDataFromRecycleBin", Data: `{"ClearObjects": true, "ClearObjectsOlderThanDays": -1}`}}
			},
			wantField: "tasks[0].data",
		},
		{
			name:      "invalid crawler pattern",
			modify:    func(c *Config) { c.Crawler.BaselinePatterns = []string{"(bot"} },
			wantField: "crawler.baseline_patterns",
		},
		{
			name:      "tracing without endpoint",
			modify:    func(c *Config) { c.Telemetry.Tracing.Enabled = true },
			wantField: "telemetry.tracing.endpoint",
		},
		{
			name: "sample ratio out of range",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Endpoint = "localhost:4317"
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name:      "unsorted buckets",
			modify:    func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{5, 1} },
			wantField: "telemetry.metrics.duration_buckets",
		},
		{
			name:      "bad log format",
			modify:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidate_DisabledRecycleBinTaskSkipsData(t *testing.T) {
	disabled := false
	cfg := Default()
	cfg.Tasks = []TaskConfig{{Name: "clear", Type: "ClearOldDataFromRecycleBin", Enabled: &disabled}}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected disabled task with empty data to validate, got %v", err)
	}
}

func TestValidate_MemoryBackendWithoutDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Backend: "memory"}}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		t.Errorf("expected memory backend to validate, got %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(multi.Error(), "2 errors") || !strings.Contains(multi.Error(), "  - b: worse") {
		t.Errorf("unexpected message %q", multi.Error())
	}
}
