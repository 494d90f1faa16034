package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"bqdigital/housekeeper/pkg/cli"
	"bqdigital/housekeeper/pkg/cms"
)

var eventsFlags struct {
	limit  int
	output string
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent event log entries",
	Long: `Show the most recent event log entries, newest first.

Examples:
  housekeeper events
  housekeeper events --limit 200 --output csv > events.csv`,
	RunE: showEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().IntVarP(&eventsFlags.limit, "limit", "n", 50, "maximum number of entries")
	eventsCmd.Flags().StringVarP(&eventsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

type eventTable []cms.AuditEvent

func (t eventTable) Headers() []string {
	return []string{"TIME", "TYPE", "SOURCE", "CODE", "SITE", "DESCRIPTION"}
}

func (t eventTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		site := "-"
		if e.Context.SiteID != 0 {
			site = strconv.Itoa(e.Context.SiteID)
		}
		rows = append(rows, []string{
			e.EventTime.Local().Format("2006-01-02 15:04:05"),
			e.EventType,
			e.Source,
			e.Code,
			site,
			e.Description,
		})
	}
	return rows
}

func showEvents(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(eventsFlags.output))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return cli.NewCommandError("events", err)
	}
	defer a.close()

	events, err := a.store.RecentEvents(cmd.Context(), eventsFlags.limit)
	if err != nil {
		return cli.NewCommandError("events", err)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), eventTable(events))
}
