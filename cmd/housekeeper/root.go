package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bqdigital/housekeeper/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "housekeeper",
	Short: "Housekeeper - scheduled version-history maintenance",
	Long: `Housekeeper keeps a content platform's version history in check.

It runs two kinds of scheduled tasks:
  - ClearOldDataFromRecycleBin destroys recycle-bin history older than a
    configured number of days, pages before objects
  - TrimObjectAndPageVersionHistory deletes versions beyond the configured
    history length for every page and live object

Every destroyed item is written to the event log.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "housekeeper.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
