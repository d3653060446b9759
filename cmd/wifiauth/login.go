package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/wifiauth/internal/model"
)

var (
	loginNetwork string
	loginSSID    string
)

var errLoginFailed = errors.New("login failed")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the captive portal",
	Long: `Log in to the captive portal of the current network.

The profile is chosen by --network, else by the detected SSID, else by
default_network, else the only configured profile. Every attempt is
recorded, successful or not.

Examples:
  wifiauth login
  wifiauth login -n office
  wifiauth login --ssid HomeWiFi`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	addLoginFlags(loginCmd)
}

func addLoginFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&loginNetwork, "network", "n", "",
		"network profile to use (skips SSID detection)")
	cmd.Flags().StringVar(&loginSSID, "ssid", "",
		"use this SSID instead of detecting it")
}

func runLogin(cmd *cobra.Command, args []string) error {
	db, attempts, err := openAttempts()
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newService(attempts, loginSSID)
	if err != nil {
		return err
	}

	outcome, err := svc.Login(cmd.Context(), loginNetwork)
	if err != nil {
		return err
	}

	p := outcome.Resolution.Profile
	fmt.Println(titleStyle.Render("Login"))
	printField("Network:", fmt.Sprintf("%s (%s)", p.Name, outcome.Resolution.Rule))
	if outcome.DetectedSSID != "" {
		printField("Detected SSID:", outcome.DetectedSSID)
	}
	printField("Login URL:", p.LoginURL)

	latest, err := attempts.Latest()
	if err != nil {
		return err
	}
	if latest != nil {
		fmt.Println()
		printAttempt(latest)
	}

	if !outcome.Result.Success() {
		return errLoginFailed
	}
	fmt.Println()
	fmt.Println(successStyle.Render("✓ Logged in to " + p.Name))
	return nil
}

func printAttempt(a *model.LoginAttempt) {
	fmt.Println(titleStyle.Render("Latest attempt"))
	printField("Time:", a.Timestamp.Format("2006-01-02 15:04:05"))
	printField("Network:", orDash(a.NetworkName))
	printField("SSID:", orDash(a.NetworkSSID))
	printField("Username:", a.Username)
	fmt.Printf("  %s %s\n", labelStyle.Render("Status:"), statusText(a.ResponseStatus))
	printField("Message:", a.ResponseMessage)
}
