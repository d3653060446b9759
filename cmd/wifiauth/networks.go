package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"profiles"},
	Short:   "List configured network profiles",
	Long: `List the configured network profiles in resolution order. The profile
matching the current SSID is marked with *, the default with (default).`,
	Args: cobra.NoArgs,
	RunE: runNetworks,
}

func runNetworks(cmd *cobra.Command, args []string) error {
	svc, err := newService(nil, "")
	if err != nil {
		return err
	}

	profiles, ssid := svc.ListProfiles(cmd.Context())

	fmt.Println(titleStyle.Render(fmt.Sprintf("Network profiles (%d)", len(profiles))))
	if ssid != "" {
		printField("Current SSID:", ssid)
		fmt.Println()
	}

	for _, p := range profiles {
		marker := "  "
		if p.Current {
			marker = successStyle.Render("* ")
		}
		name := valueStyle.Render(p.Name)
		if p.Default {
			name += dimStyle.Render(" (default)")
		}
		fmt.Printf("%s%s\n", marker, name)
		fmt.Printf("    %s %s\n", labelStyle.Render("SSID:"), orDash(p.SSID))
		fmt.Printf("    %s %s\n", labelStyle.Render("Login URL:"), p.LoginURL)
		fmt.Printf("    %s %s\n", labelStyle.Render("Username:"), p.Username)
		if p.Description != "" {
			fmt.Printf("    %s %s\n", labelStyle.Render("Description:"), p.Description)
		}
	}
	return nil
}
