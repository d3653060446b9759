package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/daemon"
	"github.com/user/wifiauth/internal/login"
)

var (
	watchNetwork  string
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep logging in whenever the portal intercepts traffic",
	Long: `Probe connectivity every watch.interval and log in when the captive
portal intercepts the probe. Runs in the foreground until interrupted or
'wifiauth stop' is called. Only one watcher runs per data directory.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchNetwork, "network", "n", "", "network profile to use for every login")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "probe interval (default watch.interval)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if running, pid := daemon.CheckRunning(cfg.DataDir); running {
		return fmt.Errorf("%w (pid %d)", daemon.ErrAlreadyRunning, pid)
	}

	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newService(attempts, "")
	if err != nil {
		return err
	}

	interval := cfg.Watch.Interval
	if watchInterval > 0 {
		interval = watchInterval
	}

	d, err := daemon.New(daemon.Options{
		DataDir:       cfg.DataDir,
		Interval:      interval,
		ProbeURL:      cfg.Watch.ProbeURL,
		Network:       watchNetwork,
		Prober:        login.NewExecutor(cfg.Login.Timeout, cfg.Login.TestTimeout),
		Authenticator: svc,
	})
	if err != nil {
		return err
	}

	if err := d.Start(); err != nil {
		return err
	}
	fmt.Printf("Watching every %s (Ctrl+C or 'wifiauth stop' to quit)\n", interval)

	d.Wait()
	return d.Stop()
}
