package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var testNetwork string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the portal login page is reachable",
	Long: `Send a HEAD request to the login URL of the resolved profile.
Nothing is recorded.`,
	Args: cobra.NoArgs,
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringVarP(&testNetwork, "network", "n", "", "network profile to test")
}

func runTest(cmd *cobra.Command, args []string) error {
	// The service only records on login; tests need no store.
	svc, err := newService(nil, "")
	if err != nil {
		return err
	}

	check, err := svc.TestConnection(cmd.Context(), testNetwork)
	if check != nil {
		fmt.Println(titleStyle.Render("Connection test"))
		printField("Network:", check.Profile.Name)
		printField("Login URL:", check.Profile.LoginURL)
	}
	if err != nil {
		fmt.Printf("  %s %s\n", labelStyle.Render("Result:"), errorStyle.Render("✗ unreachable"))
		return fmt.Errorf("connection test failed: %w", err)
	}

	if check.OK() {
		fmt.Printf("  %s %s\n", labelStyle.Render("Result:"),
			successStyle.Render(fmt.Sprintf("✓ reachable (HTTP %d)", check.StatusCode)))
		return nil
	}
	fmt.Printf("  %s %s\n", labelStyle.Render("Result:"),
		warnStyle.Render(fmt.Sprintf("! HTTP %d", check.StatusCode)))
	return fmt.Errorf("login URL answered HTTP %d", check.StatusCode)
}
