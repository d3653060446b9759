package report

import (
	"fmt"
	"strings"

	"github.com/user/wifiauth/internal/model"
)

// GenerateOutcomePie creates a Mermaid pie chart of successful and failed
// attempts.
func GenerateOutcomePie(stats model.AttemptStats) string {
	if stats.TotalAttempts == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title Login outcomes\n")
	sb.WriteString(fmt.Sprintf("    \"Successful\" : %d\n", stats.SuccessfulAttempts))
	sb.WriteString(fmt.Sprintf("    \"Failed\" : %d\n", stats.FailedAttempts))
	sb.WriteString("```\n")
	return sb.String()
}

// GenerateNetworkPie creates a Mermaid pie chart of attempts per network.
func GenerateNetworkPie(networks []model.NetworkStats) string {
	if len(networks) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("pie title Attempts by network\n")
	for _, ns := range networks {
		sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", escapeLabel(ns.DisplayName()), ns.TotalAttempts))
	}
	sb.WriteString("```\n")
	return sb.String()
}

// GenerateHourlyChart creates a Mermaid bar chart of attempts per hour, with
// a line for failures.
func GenerateHourlyChart(hours []model.HourlyStats) string {
	if len(hours) == 0 {
		return ""
	}

	labels := make([]string, len(hours))
	totals := make([]string, len(hours))
	failed := make([]string, len(hours))
	peak := 0
	for i, h := range hours {
		labels[i] = fmt.Sprintf("\"%s\"", shortenHour(h.Hour))
		totals[i] = fmt.Sprintf("%d", h.TotalAttempts)
		failed[i] = fmt.Sprintf("%d", h.FailedAttempts)
		if h.TotalAttempts > peak {
			peak = h.TotalAttempts
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Attempts per hour\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Attempts\" 0 --> %d\n", peak+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(totals, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(failed, ", ")))
	sb.WriteString("```\n")
	return sb.String()
}

// shortenHour turns "2006-01-02 15" into "01-02 15h".
func shortenHour(hour string) string {
	if len(hour) == len("2006-01-02 15") {
		return hour[5:] + "h"
	}
	return hour
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
