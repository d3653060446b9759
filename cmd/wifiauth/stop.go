package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/daemon"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watcher",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := daemon.SendStop(cfg.DataDir)
	if errors.Is(err, daemon.ErrNotRunning) {
		fmt.Println("Watcher is not running")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}

	fmt.Printf("Stopping watcher (PID %d)...\n", pid)

	for i := 0; i < 30; i++ {
		time.Sleep(time.Second)
		if running, _ := daemon.CheckRunning(cfg.DataDir); !running {
			fmt.Println("Watcher stopped")
			return nil
		}
	}

	fmt.Println(warnStyle.Render("Warning: watcher may not have stopped completely"))
	return nil
}
