package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/model"
	"github.com/user/wifiauth/internal/report"
	"github.com/user/wifiauth/internal/util"
)

var (
	reportLast     string
	reportOutput   string
	reportFailures int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a login history report",
	Long: `Generate a markdown report of login attempts with Mermaid charts.

Examples:
  wifiauth report --last 24h
  wifiauth report --last 7d -o ./report.md
  wifiauth report --last 2w -o -`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportLast, "last", "24h",
		"Time range (e.g., 1h, 24h, 7d, 2w)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"Output file path, - for stdout (default: <report_dir>/wifiauth-report-<time>.md)")
	reportCmd.Flags().IntVar(&reportFailures, "failures", report.DefaultFailureLimit,
		"Maximum failed attempts to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	duration, err := util.ParseDuration(reportLast)
	if err != nil {
		return fmt.Errorf("invalid time range: %w", err)
	}

	until := time.Now()
	since := until.Add(-duration)

	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	gen := report.NewGenerator(attempts)
	data, err := gen.Generate(model.ReportOptions{
		Since:        since,
		Until:        until,
		FailureLimit: reportFailures,
	})
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	switch reportOutput {
	case "-":
		fmt.Println(report.FormatMarkdown(data))
		return nil
	case "":
		path, err := report.WriteMarkdownFile(data, cfg.ReportDir)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", path)
	default:
		if err := os.WriteFile(reportOutput, []byte(report.FormatMarkdown(data)), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", reportOutput)
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("Report summary"))
	printField("Window:", fmt.Sprintf("%s to %s", since.Format("2006-01-02 15:04"), until.Format("2006-01-02 15:04")))
	printField("Attempts:", fmt.Sprintf("%d", data.Summary.TotalAttempts))
	printField("Success rate:", fmt.Sprintf("%.2f%%", data.Summary.SuccessRate))
	printField("Networks:", fmt.Sprintf("%d", len(data.Networks)))
	printField("Failures:", fmt.Sprintf("%d", data.FailureCount))

	return nil
}
