package main

import (
	"fmt"
	"strings"

	"github.com/user/wifiauth/internal/detect"
	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/portal"
	"github.com/user/wifiauth/internal/profile"
	"github.com/user/wifiauth/internal/storage"
	"github.com/user/wifiauth/internal/tui"
	"github.com/user/wifiauth/internal/util"
)

var (
	titleStyle   = tui.SectionTitleStyle.MarginBottom(1)
	labelStyle   = tui.LabelStyle
	valueStyle   = tui.ValueStyle
	successStyle = tui.SuccessStyle.Bold(true)
	errorStyle   = tui.ErrorStyle
	warnStyle    = tui.WarningStyle
	dimStyle     = tui.DimStyle
)

// openAttempts opens the attempt log and makes sure its schema is current.
// The caller closes the returned DB.
func openAttempts() (*storage.DB, *storage.AttemptStorage, error) {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	attempts := storage.NewAttemptStorage(db)
	if err := attempts.EnsureSchema(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, attempts, nil
}

// loadProfiles reads the network profiles from the config document.
func loadProfiles() (*profile.Config, error) {
	profiles, err := profile.LoadFile(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	for _, w := range profiles.Warnings {
		util.Warn("config: %s", w)
	}
	return profiles, nil
}

// newService wires the login workflow. A non-empty ssid replaces platform
// detection.
func newService(attempts *storage.AttemptStorage, ssid string) (*portal.Service, error) {
	profiles, err := loadProfiles()
	if err != nil {
		return nil, err
	}

	var detector detect.Detector = detect.NewSystem()
	if ssid != "" {
		detector = detect.Static{SSID: ssid}
	}

	executor := login.NewExecutor(cfg.Login.Timeout, cfg.Login.TestTimeout)
	return portal.NewService(profiles, detector, executor, attempts), nil
}

func printField(label, value string) {
	fmt.Printf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func statusText(status string) string {
	if login.Success(status) {
		return successStyle.Render(status)
	}
	return errorStyle.Render(status)
}

func rule(n int) string {
	return dimStyle.Render(strings.Repeat("─", n))
}
