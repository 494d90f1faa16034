package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides and report every
problem found: unknown task types, bad cron schedules, recycle-bin task data
that does not parse, invalid crawler patterns and out-of-range settings.

Examples:
  housekeeper validate
  housekeeper validate --config /etc/housekeeper/housekeeper.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", cfgFile)
	fmt.Fprintf(out, "  storage: %s\n", cfg.Database.Backend)
	for _, t := range cfg.Tasks {
		state := "enabled"
		if !t.IsEnabled() {
			state = "disabled"
		}
		schedule := t.Schedule
		if schedule == "" {
			schedule = "manual"
		}
		fmt.Fprintf(out, "  task %s: %s (%s, %s)\n", t.Name, t.Type, schedule, state)
	}
	return nil
}
