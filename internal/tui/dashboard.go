package tui

import (
	"fmt"
	"strings"

	"github.com/user/wifiauth/internal/login"
	domain "github.com/user/wifiauth/internal/model"
)

// DashboardData holds data for the dashboard view.
type DashboardData struct {
	Stats    domain.AttemptStats
	Networks []domain.NetworkStats
	Recent   []domain.LoginAttempt
	Filter   string
}

// Dashboard is the main dashboard view.
type Dashboard struct {
	data   *DashboardData
	width  int
	height int
}

// NewDashboard creates a new dashboard.
func NewDashboard(data *DashboardData, width, height int) *Dashboard {
	return &Dashboard{
		data:   data,
		width:  width,
		height: height,
	}
}

// SetSize updates the dashboard size.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *Dashboard) sectionWidth() int {
	if d.width-4 < 60 {
		return 60
	}
	return d.width - 4
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Width(d.width).Render("📶 WiFi Auth"))
	sb.WriteString("\n\n")
	sb.WriteString(d.renderStatsSection())
	sb.WriteString("\n")
	sb.WriteString(d.renderNetworksSection())
	sb.WriteString("\n")
	sb.WriteString(d.renderRecentSection())
	sb.WriteString("\n")
	sb.WriteString(HelpStyle.Render("'r' refresh • 'n' next network filter • 'q' quit"))

	return sb.String()
}

func (d *Dashboard) renderStatsSection() string {
	s := d.data.Stats
	last := "-"
	if s.LastAttempt != nil {
		last = s.LastAttempt.Format("2006-01-02 15:04:05")
	}

	content := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s\n%s %s %s\n%s %s",
		LabelStyle.Render("Total:"),
		ValueStyle.Render(fmt.Sprintf("%d", s.TotalAttempts)),
		LabelStyle.Render("Successful:"),
		SuccessStyle.Render(fmt.Sprintf("%d", s.SuccessfulAttempts)),
		LabelStyle.Render("Failed:"),
		ErrorStyle.Render(fmt.Sprintf("%d", s.FailedAttempts)),
		LabelStyle.Render("Success rate:"),
		RenderBar(s.SuccessRate, 20),
		ValueStyle.Render(fmt.Sprintf("%.2f%%", s.SuccessRate)),
		LabelStyle.Render("Last attempt:"),
		ValueStyle.Render(last),
	)

	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("📊 Statistics") + "\n" + content)
}

func (d *Dashboard) renderNetworksSection() string {
	title := SectionTitleStyle.Render("🌐 Networks")
	if len(d.data.Networks) == 0 {
		return SectionStyle.Width(d.sectionWidth()).Render(
			title + "\n" + DimStyle.Render("No login attempts recorded yet"))
	}

	rows := []string{
		TableHeaderStyle.Render(fmt.Sprintf("%-18s %6s %6s %6s %8s  %s", "Network", "Total", "OK", "Fail", "Rate", "Last attempt")),
	}
	for _, ns := range d.data.Networks {
		name := truncate(ns.DisplayName(), 18)
		if ns.NetworkName == d.data.Filter && d.data.Filter != "" {
			name = truncate("▸ "+name, 18)
		}
		last := "-"
		if !ns.LastAttempt.IsZero() {
			last = ns.LastAttempt.Format("01-02 15:04")
		}
		rows = append(rows, fmt.Sprintf("%-18s %6d %6d %6d %7.2f%%  %s",
			name, ns.TotalAttempts, ns.SuccessfulAttempts, ns.FailedAttempts, ns.SuccessRate, last))
	}

	return SectionStyle.Width(d.sectionWidth()).Render(title + "\n" + strings.Join(rows, "\n"))
}

func (d *Dashboard) renderRecentSection() string {
	label := "all networks"
	if d.data.Filter != "" {
		label = d.data.Filter
	}
	title := SectionTitleStyle.Render("🕑 Recent attempts") + " " + DimStyle.Render("("+label+")")

	if len(d.data.Recent) == 0 {
		return SectionStyle.Width(d.sectionWidth()).Render(
			title + "\n" + DimStyle.Render("No attempts"))
	}

	rows := []string{
		TableHeaderStyle.Render(fmt.Sprintf("%-19s  %-14s %-16s %-7s %s", "Time", "Network", "SSID", "Status", "Message")),
	}
	for _, a := range d.data.Recent {
		status := fmt.Sprintf("%-7s", truncate(a.ResponseStatus, 7))
		if login.Success(a.ResponseStatus) {
			status = SuccessStyle.Render(status)
		} else {
			status = ErrorStyle.Render(status)
		}
		rows = append(rows, fmt.Sprintf("%-19s  %-14s %-16s %s %s",
			a.Timestamp.Format("2006-01-02 15:04:05"),
			truncate(orDash(a.NetworkName), 14),
			truncate(orDash(a.NetworkSSID), 16),
			status,
			truncate(a.ResponseMessage, 40),
		))
	}

	return SectionStyle.Width(d.sectionWidth()).Render(title + "\n" + strings.Join(rows, "\n"))
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
