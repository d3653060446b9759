package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/web"
)

var (
	dashboardHost string
	dashboardPort int
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"web"},
	Short:   "Start the web dashboard",
	Long: `Start the web dashboard for browsing login attempts.

The dashboard is protected by HTTP basic auth using dashboard.username and
dashboard.password from the config. The password may be a bcrypt hash.

Examples:
  wifiauth dashboard
  wifiauth dashboard --host 0.0.0.0 --port 8080`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardHost, "host", "", "listen address (default dashboard.host)")
	dashboardCmd.Flags().IntVarP(&dashboardPort, "port", "p", 0, "listen port (default dashboard.port)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	dc := cfg.Dashboard
	if dashboardHost != "" {
		dc.Host = dashboardHost
	}
	if dashboardPort != 0 {
		dc.Port = dashboardPort
	}

	fmt.Printf("Starting dashboard on http://%s\n", dc.Addr())
	fmt.Println("Press Ctrl+C to stop")

	srv := web.NewServer(attempts, dc)
	return srv.Start(cmd.Context())
}
