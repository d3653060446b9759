package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/daemon"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show watcher status and the latest attempt",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	running, pid := daemon.CheckRunning(cfg.DataDir)

	fmt.Println(titleStyle.Render("wifiauth status"))

	fmt.Print("  " + labelStyle.Render("Watcher:") + " ")
	if running {
		fmt.Println(successStyle.Render(fmt.Sprintf("Running (PID %d)", pid)))
	} else {
		fmt.Println(errorStyle.Render("Stopped"))
	}

	if sf, err := daemon.ReadStatusFile(cfg.DataDir); err == nil && running {
		printField("Started:", sf.StartTime)
		printField("Uptime:", sf.Uptime)
		if sf.LastNetwork != "" {
			fmt.Printf("  %s %s %s\n", labelStyle.Render("Last login:"),
				valueStyle.Render(sf.LastNetwork), statusText(sf.LastStatus))
		}
		for _, job := range sf.Jobs {
			state := "idle"
			if job.Running {
				state = "running"
			}
			fmt.Printf("  %s %s (last: %s, next: %s, errors: %d)\n",
				labelStyle.Render(job.Name+":"),
				valueStyle.Render(state),
				job.LastRun.Format("15:04:05"),
				job.NextRun.Format("15:04:05"),
				job.ErrorCount)
			if job.LastError != "" {
				fmt.Printf("  %s %s\n", labelStyle.Render("Last error:"), errorStyle.Render(job.LastError))
			}
		}
	}

	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := attempts.Count()
	if err != nil {
		return err
	}
	printField("Attempts:", fmt.Sprintf("%d", count))

	latest, err := attempts.Latest()
	if err != nil {
		return err
	}
	if latest != nil {
		fmt.Println()
		printAttempt(latest)
	}
	return nil
}
