package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/tui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show login statistics per network",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := attempts.Summary()
	if err != nil {
		return err
	}
	networks, err := attempts.AggregateByNetwork()
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Overall"))
	printField("Total:", fmt.Sprintf("%d", summary.TotalAttempts))
	printField("Successful:", fmt.Sprintf("%d", summary.SuccessfulAttempts))
	printField("Failed:", fmt.Sprintf("%d", summary.FailedAttempts))
	fmt.Printf("  %s %s %s\n", labelStyle.Render("Success rate:"),
		tui.RenderBar(summary.SuccessRate, 20), valueStyle.Render(fmt.Sprintf("%.2f%%", summary.SuccessRate)))
	if summary.LastAttempt != nil {
		printField("Last attempt:", summary.LastAttempt.Format("2006-01-02 15:04:05"))
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("Per network"))
	if len(networks) == 0 {
		fmt.Println(dimStyle.Render("No login attempts recorded"))
		return nil
	}

	fmt.Printf("%-18s %7s %7s %7s %9s  %s\n", "Network", "Total", "OK", "Failed", "Rate", "Last attempt")
	fmt.Println(rule(72))
	for _, ns := range networks {
		last := "-"
		if !ns.LastAttempt.IsZero() {
			last = ns.LastAttempt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-18s %7d %7d %7d %8.2f%%  %s\n",
			truncate(ns.DisplayName(), 18), ns.TotalAttempts, ns.SuccessfulAttempts,
			ns.FailedAttempts, ns.SuccessRate, last)
	}
	return nil
}
