package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"bqdigital/housekeeper/pkg/cli"
	"bqdigital/housekeeper/pkg/config"
	"bqdigital/housekeeper/pkg/crawler"
)

var crawlerFlags struct {
	output string
}

var crawlerCmd = &cobra.Command{
	Use:   "crawler",
	Short: "Crawler detection tools",
}

var crawlerCheckCmd = &cobra.Command{
	Use:   "check [USER_AGENT...]",
	Short: "Classify user agents as crawlers or browsers",
	Long: `Classify user agents the way the admin server does before it accepts a
task trigger. User agents are read from the arguments, or one per line from
standard input when no arguments are given.

Examples:
  housekeeper crawler check "Mozilla/5.0 (compatible; Googlebot/2.1)"
  cut -d'"' -f6 access.log | sort -u | housekeeper crawler check --output csv`,
	RunE: checkCrawlers,
}

func init() {
	rootCmd.AddCommand(crawlerCmd)
	crawlerCmd.AddCommand(crawlerCheckCmd)

	crawlerCheckCmd.Flags().StringVarP(&crawlerFlags.output, "output", "o", "text", "output format: text, json, csv")
}

type agentResult struct {
	UserAgent string `json:"user_agent"`
	Crawler   bool   `json:"crawler"`
}

type agentTable []agentResult

func (t agentTable) Headers() []string { return []string{"CRAWLER", "USER AGENT"} }

func (t agentTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{fmt.Sprint(r.Crawler), r.UserAgent})
	}
	return rows
}

func checkCrawlers(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(crawlerFlags.output))
	if err != nil {
		return err
	}

	// The config file is optional here; without one the default patterns apply.
	var patterns []string
	if cmd.Flags().Changed("config") {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		patterns = cfg.Crawler.BaselinePatterns
	} else if cfg, err := config.LoadConfig(cfgFile); err == nil {
		patterns = cfg.Crawler.BaselinePatterns
	}

	checker, err := newCrawlerChecker(patterns)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	agents := args
	if len(agents) == 0 {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				agents = append(agents, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read user agents: %w", err)
		}
	}

	return formatter.FormatTo(cmd.OutOrStdout(), classifyAgents(cmd.Context(), checker, agents))
}

func classifyAgents(ctx context.Context, checker crawler.Checker, agents []string) agentTable {
	table := make(agentTable, 0, len(agents))
	for _, ua := range agents {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", ua)
		table = append(table, agentResult{
			UserAgent: ua,
			Crawler:   checker.IsCrawler(crawler.WithRequest(ctx, req)),
		})
	}
	return table
}
