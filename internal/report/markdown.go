package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/user/wifiauth/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatMarkdown renders a report as Markdown.
func FormatMarkdown(data *ReportData) string {
	var sb strings.Builder

	sb.WriteString("# WiFi Login Report\n\n")
	sb.WriteString(fmt.Sprintf("- **Generated:** %s\n", data.GeneratedAt.Format(timeLayout)))
	sb.WriteString(fmt.Sprintf("- **Period:** %s to %s\n\n",
		formatTime(data.Since), formatTime(data.Until)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Total attempts | %d |\n", data.Summary.TotalAttempts))
	sb.WriteString(fmt.Sprintf("| Successful | %d |\n", data.Summary.SuccessfulAttempts))
	sb.WriteString(fmt.Sprintf("| Failed | %d |\n", data.Summary.FailedAttempts))
	sb.WriteString(fmt.Sprintf("| Success rate | %.2f%% |\n", data.Summary.SuccessRate))
	if data.LastSuccess != nil {
		sb.WriteString(fmt.Sprintf("| Last success | %s (%s) |\n",
			data.LastSuccess.Timestamp.Format(timeLayout), networkLabel(data.LastSuccess.NetworkName)))
	}
	sb.WriteString("\n")

	if data.Summary.TotalAttempts == 0 {
		sb.WriteString("_No login attempts were recorded in this period._\n")
		return sb.String()
	}

	sb.WriteString(GenerateOutcomePie(data.Summary))
	sb.WriteString("\n")

	sb.WriteString("## Networks\n\n")
	sb.WriteString("| Network | Attempts | Successful | Failed | Success rate | Last attempt |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, ns := range data.Networks {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %.2f%% | %s |\n",
			ns.DisplayName(), ns.TotalAttempts, ns.SuccessfulAttempts, ns.FailedAttempts,
			ns.SuccessRate, formatTime(ns.LastAttempt)))
	}
	sb.WriteString("\n")
	if len(data.Networks) > 1 {
		sb.WriteString(GenerateNetworkPie(data.Networks))
		sb.WriteString("\n")
	}

	if len(data.StatusSummary) > 0 {
		sb.WriteString("## Response statuses\n\n")
		sb.WriteString("| Status | Count |\n|---|---|\n")
		statuses := make([]string, 0, len(data.StatusSummary))
		for st := range data.StatusSummary {
			statuses = append(statuses, st)
		}
		sort.Strings(statuses)
		for _, st := range statuses {
			label := st
			if label == "" {
				label = "(none)"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", label, data.StatusSummary[st]))
		}
		sb.WriteString("\n")
	}

	if len(data.Hourly) > 0 {
		sb.WriteString("## Activity\n\n")
		sb.WriteString(GenerateHourlyChart(data.Hourly))
		sb.WriteString("\n")
	}

	if data.FailureCount > 0 {
		sb.WriteString("## Failed attempts\n\n")
		if data.FailureCount > len(data.Failures) {
			sb.WriteString(fmt.Sprintf("Showing the newest %d of %d failures.\n\n",
				len(data.Failures), data.FailureCount))
		}
		sb.WriteString("| Time | Network | SSID | Status | Message |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, a := range data.Failures {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				a.Timestamp.Format(timeLayout), networkLabel(a.NetworkName), dash(a.NetworkSSID),
				a.ResponseStatus, escapeCell(a.ResponseMessage)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteMarkdownFile writes the report into dir and returns the file path.
func WriteMarkdownFile(data *ReportData, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	name := fmt.Sprintf("wifiauth-report-%s.md", data.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(FormatMarkdown(data)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func networkLabel(name string) string {
	if name == "" {
		return model.NetworkStats{Legacy: true}.DisplayName()
	}
	return name
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
