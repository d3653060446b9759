package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the current SSID and its network profile",
	Args:  cobra.NoArgs,
	RunE:  runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	svc, err := newService(nil, "")
	if err != nil {
		return err
	}

	d := svc.Detect(cmd.Context())

	fmt.Println(titleStyle.Render("Network detection"))
	if d.Err != nil {
		fmt.Printf("  %s %s\n", labelStyle.Render("SSID:"), errorStyle.Render(d.Err.Error()))
	} else if d.SSID == "" {
		fmt.Printf("  %s %s\n", labelStyle.Render("SSID:"), warnStyle.Render("not connected to WiFi"))
	} else {
		printField("SSID:", d.SSID)
	}

	if d.Profile != nil {
		printField("Profile:", d.Profile.Name)
		printField("Login URL:", d.Profile.LoginURL)
		return nil
	}
	fmt.Printf("  %s %s\n", labelStyle.Render("Profile:"), dimStyle.Render("no profile configured for this network"))
	return nil
}
