package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"bqdigital/housekeeper/pkg/cli"
	"bqdigital/housekeeper/pkg/cms/storage"
	"bqdigital/housekeeper/pkg/config"
	"bqdigital/housekeeper/pkg/eventlog"
	"bqdigital/housekeeper/pkg/scheduler"
	"bqdigital/housekeeper/pkg/tasks"
	"bqdigital/housekeeper/pkg/telemetry/logging"
	"bqdigital/housekeeper/pkg/telemetry/metrics"
	"bqdigital/housekeeper/pkg/telemetry/tracing"
)

// app holds the services a command works with.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Backend
	events   *eventlog.Service
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	registry *tasks.Registry
	runner   *scheduler.Runner
}

// loadConfig reads the --config file with environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Command output goes to stdout, so
// logs go to stderr.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.Setup(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    w,
	})
}

func storageConfig(cfg *config.Config) *storage.SQLConfig {
	sc := storage.DefaultSQLConfig()
	sc.Driver = cfg.Database.Backend
	sc.DSN = cfg.Database.DSN
	if cfg.Database.MaxOpenConns > 0 {
		sc.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		sc.MaxIdleConns = cfg.Database.MaxIdleConns
	}
	sc.WALMode = cfg.Database.WALMode
	if cfg.Database.BusyTimeout > 0 {
		sc.BusyTimeout = cfg.Database.BusyTimeout
	}
	sc.History = storage.HistoryPolicy{
		KeepVersions:     cfg.History.KeepVersions,
		SiteKeepVersions: cfg.History.SiteKeepVersions,
	}
	return sc
}

// newApp opens storage and builds the task registry from cfg.
func newApp(cfg *config.Config) (*app, error) {
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return newAppWithLogger(cfg, logger)
}

func newAppWithLogger(cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := storage.Open(cfg.Database.Backend, storageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Database.Backend, err)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		events:   eventlog.New(store, logger),
		metrics:  metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:   tracer,
		registry: tasks.NewRegistry(),
	}

	entries, err := a.entries(cfg)
	if err != nil {
		a.close()
		return nil, cli.NewConfigError(cfgFile, err)
	}
	if err := a.registry.Replace(entries); err != nil {
		a.close()
		return nil, cli.NewConfigError(cfgFile, err)
	}

	a.runner = scheduler.NewRunner(a.registry,
		scheduler.WithRunRecorder(store),
		scheduler.WithMetrics(a.metrics),
		scheduler.WithTracer(tracer),
		scheduler.WithLogger(logger),
	)
	return a, nil
}

// entries builds registry entries for cfg's tasks against the app's store.
func (a *app) entries(cfg *config.Config) ([]*tasks.Entry, error) {
	return scheduler.BuildEntries(cfg.Tasks, tasks.Deps{
		Store:    a.store,
		Sites:    a.store,
		Events:   a.events,
		Recorder: a.metrics,
		Logger:   a.logger,
	})
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown incomplete", "error", err)
	}
}
