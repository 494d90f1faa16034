package main

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/spf13/cobra"

	"bqdigital/housekeeper/pkg/cli"
	"bqdigital/housekeeper/pkg/config"
	"bqdigital/housekeeper/pkg/crawler"
	"bqdigital/housekeeper/pkg/scheduler"
	"bqdigital/housekeeper/pkg/server"
	"bqdigital/housekeeper/pkg/telemetry/health"
)

var runFlags struct {
	listenAddress string
	noWatch       bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the task scheduler and admin server",
	Long: `Run the configured tasks on their schedules and serve the admin API.

The configuration file is watched for changes; task definitions are reloaded
without a restart. SIGHUP forces a reload. Database, history and crawler
settings only take effect after a restart.

Examples:
  # Start with default config
  housekeeper run

  # Start with custom config
  housekeeper run --config /etc/housekeeper/housekeeper.yaml

  # Override the admin listen address
  housekeeper run --listen 0.0.0.0:9090

  # Validate config and open storage without starting
  housekeeper run --dry-run`,
	RunE: runHousekeeper,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override admin listen address")
	runCmd.Flags().BoolVar(&runFlags.noWatch, "no-watch", false, "do not reload when the config file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and storage without starting")
}

func runHousekeeper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}

	a, err := newApp(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer a.close()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintf(out, "✓ Configuration valid (%d tasks)\n", len(a.registry.Entries()))
		return nil
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	sched := scheduler.New(a.runner, a.logger)
	if err := sched.Start(ctx); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer sched.Stop()

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("storage", health.PingCheck(a.store))
	checker.RegisterCheck("scheduler", health.RunningCheck(sched.IsRunning))

	crawlers, err := newCrawlerChecker(cfg.Crawler.BaselinePatterns)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		metricsHandler = a.metrics.Handler()
	}

	srv := server.NewServer(&cfg.Server, server.Deps{
		Runner:       a.runner,
		Health:       checker,
		Metrics:      metricsHandler,
		Tracer:       a.tracer,
		Crawlers:     crawlers,
		HealthConfig: cfg.Telemetry.Health,
		MetricsPath:  cfg.Telemetry.Metrics.Path,
		Version:      Version,
		Commit:       GitCommit,
		BuildTime:    BuildDate,
	}, a.logger)

	reload := func(next *config.Config) {
		if next.Database != cfg.Database ||
			next.History.KeepVersions != cfg.History.KeepVersions ||
			!maps.Equal(next.History.SiteKeepVersions, cfg.History.SiteKeepVersions) ||
			!slices.Equal(next.Crawler.BaselinePatterns, cfg.Crawler.BaselinePatterns) {
			a.logger.Warn("only task changes are applied on reload, restart to apply the rest")
		}
		entries, err := a.entries(next)
		if err != nil {
			a.logger.Error("config reload rejected", "error", err)
			return
		}
		if err := sched.Reload(entries); err != nil {
			a.logger.Error("config reload rejected", "error", err)
		}
	}

	if !runFlags.noWatch {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, a.logger)
		if err != nil {
			a.logger.Warn("config watching disabled", "error", err)
		} else {
			defer watcher.Stop()
			go func() {
				if err := watcher.Watch(ctx, reload); err != nil {
					a.logger.Error("config watcher stopped", "error", err)
				}
			}()
		}
	}

	go func() {
		for range cli.ReloadSignals(ctx) {
			next, err := loadConfig()
			if err != nil {
				a.logger.Error("config reload failed", "error", err)
				continue
			}
			reload(next)
		}
	}()

	fmt.Fprintf(out, "Housekeeper v%s\n", Version)
	fmt.Fprintf(out, "✓ Configuration loaded from %s\n", cfgFile)
	fmt.Fprintf(out, "✓ Storage: %s\n", cfg.Database.Backend)
	for _, name := range sched.Scheduled() {
		if next := sched.NextRun(name); next != nil {
			fmt.Fprintf(out, "✓ %s next runs at %s\n", name, next.Format("2006-01-02 15:04:05 MST"))
		}
	}
	fmt.Fprintf(out, "✓ Admin server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "✓ Stopped")
	return nil
}

// newCrawlerChecker combines the configured baseline patterns with the
// keyword list, reading the user agent from the request in the context.
func newCrawlerChecker(patterns []string) (crawler.Checker, error) {
	if len(patterns) == 0 {
		patterns = crawler.DefaultPatterns
	}
	baseline, err := crawler.NewPatternChecker(patterns, crawler.RequestSource{})
	if err != nil {
		return nil, err
	}
	return crawler.NewKeywordChecker(baseline, crawler.RequestSource{}), nil
}
