package main

import (
	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal dashboard",
	Long: `Launch an interactive terminal dashboard of the login history.

Keys: 'r' refresh, 'n' cycle the network filter, 'q' quit.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	return tui.NewApp(attempts).Run()
}
