package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logsLimit   int
	logsNetwork string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent login attempts",
	Long: `Show the most recent login attempts, newest first.

Examples:
  wifiauth logs
  wifiauth logs -l 50
  wifiauth logs --network office`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "l", 10, "number of attempts to show")
	logsCmd.Flags().StringVar(&logsNetwork, "network", "", "only show attempts of this network profile")
}

func runLogs(cmd *cobra.Command, args []string) error {
	if logsLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", logsLimit)
	}

	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	recent, err := attempts.Recent(logsLimit, logsNetwork)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Recent login attempts (%d)", len(recent))
	if logsNetwork != "" {
		title += " for " + logsNetwork
	}
	fmt.Println(titleStyle.Render(title))

	if len(recent) == 0 {
		fmt.Println(dimStyle.Render("No login attempts recorded"))
		return nil
	}

	fmt.Printf("%-19s  %-14s %-16s %-14s %-7s %s\n", "Time", "Network", "SSID", "Username", "Status", "Message")
	fmt.Println(rule(100))
	for _, a := range recent {
		fmt.Printf("%-19s  %-14s %-16s %-14s %s %s\n",
			a.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(orDash(a.NetworkName), 14),
			truncate(orDash(a.NetworkSSID), 16),
			truncate(a.Username, 14),
			statusText(fmt.Sprintf("%-7s", truncate(a.ResponseStatus, 7))),
			truncate(a.ResponseMessage, 40),
		)
	}
	return nil
}
